package assetapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmix/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com/api", time.Second)
	assert.Error(t, err)
	_, err = New("://nope", time.Second)
	assert.Error(t, err)

	c, err := New("http://localhost:8080/api/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())
}

func TestListAssets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/assets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, `[{"id":1,"assetType":"NASDAQ","name":"A","amount":100},{"id":2,"assetType":"CASH","name":"B","amount":"50.25"}]`)
	})

	assets, err := c.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, core.Nasdaq, assets[0].Type)
	assert.Equal(t, "A", assets[0].Name)
	assert.True(t, assets[1].Amount.Equal(decimal.RequireFromString("50.25")))
}

func TestCreateAssetSendsBareNumber(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/assets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `"SP"`, string(body["assetType"]))
		assert.JSONEq(t, `"VOO"`, string(body["name"]))
		assert.Equal(t, `12.5`, string(body["amount"]))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7,"assetType":"SP","name":"VOO","amount":12.50}`)
	})

	created, err := c.CreateAsset(context.Background(), core.Asset{Type: core.SP, Name: "VOO", Amount: decimal.RequireFromString("12.5")})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
}

func TestRecommendation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/calculate/recommendation", r.URL.Path)
		_, _ = io.WriteString(w, `{"grandTotal":100,"nasdaqTarget":57.75,"nasdaqCurrent":50,"nasdaqTargetRatio":"57.75%","spTarget":17.25,"spCurrent":0,"spTargetRatio":"17.25%","conservativeCurrent":0,"cashTarget":25,"cashCurrent":50,"cashTargetRatio":"25.00%"}`)
	})

	rec, err := c.Recommendation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "57.75", rec.NasdaqTarget.String())
	assert.Equal(t, "25.00%", rec.CashTargetRatio)
}

func TestSnapshotAndRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/records":
			b, _ := io.ReadAll(r.Body)
			assert.Empty(t, b, "snapshot request must not carry a body")
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":3,"recordDate":"2025-05-01T09:00:00","grandTotal":150}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/records":
			_, _ = io.WriteString(w, `[{"id":3,"recordDate":"2025-05-01T09:00:00","grandTotal":150,"nasdaqTotal":100,"spTotal":0,"cashTotal":50}]`)
		default:
			http.NotFound(w, r)
		}
	})

	rec, err := c.CreateSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.ID)

	records, err := c.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2025, records[0].RecordDate.Year())
}

func TestEmptySuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	_, err := c.CreateSnapshot(context.Background())
	assert.NoError(t, err)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "total assets are zero", http.StatusBadRequest)
	})

	_, err := c.Recommendation(context.Background())
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "/calculate/recommendation", se.Path)
	assert.Equal(t, "total assets are zero", se.Body)
}

func TestDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"}`)
	})
	_, err := c.ListAssets(context.Background())
	assert.Error(t, err)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url+"/api", time.Second)
	require.NoError(t, err)
	_, err = c.ListRecords(context.Background())
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestNoRetry(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.ListAssets(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
