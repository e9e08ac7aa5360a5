package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmix/internal/chart"
	"assetmix/internal/core"
	"assetmix/internal/view"
)

type emptyService struct{}

func (emptyService) ListAssets(context.Context) ([]core.Asset, error) { return nil, nil }
func (emptyService) CreateAsset(_ context.Context, a core.Asset) (core.Asset, error) {
	return a, nil
}
func (emptyService) Recommendation(context.Context) (core.Recommendation, error) {
	return core.Recommendation{NasdaqTarget: decimal.RequireFromString("75"), CashTarget: decimal.RequireFromString("25")}, nil
}
func (emptyService) CreateSnapshot(context.Context) (core.HistoryRecord, error) {
	return core.HistoryRecord{}, nil
}
func (emptyService) ListRecords(context.Context) ([]core.HistoryRecord, error) { return nil, nil }

type tracked struct {
	renderers map[string]*chart.SVGRenderer
}

func (tr *tracked) factory(id string) *view.Controller {
	r := chart.NewSVGRenderer(200, 200, nil)
	tr.renderers[id] = r
	return view.NewController(emptyService{}, r, view.NewBindings("元"), view.Options{})
}

func newTracked() *tracked { return &tracked{renderers: map[string]*chart.SVGRenderer{}} }

func TestEnsureSetsCookieOnce(t *testing.T) {
	tr := newTracked()
	s := NewStore(Config{TTL: time.Hour, MaxSessions: 10}, tr.factory, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	id, c1, created := s.Ensure(rr, req)
	require.True(t, created)
	require.NotNil(t, c1)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	id2, c2, created := s.Ensure(rr, req)
	assert.False(t, created)
	assert.Equal(t, id, id2)
	assert.Same(t, c1, c2)
	assert.Empty(t, rr.Result().Cookies())

	got, ok := s.Lookup(req)
	assert.True(t, ok)
	assert.Same(t, c1, got)
}

func TestUnknownCookieStartsNewSession(t *testing.T) {
	s := NewStore(Config{TTL: time.Hour, MaxSessions: 10}, newTracked().factory, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "gone"})

	_, ok := s.Lookup(req)
	assert.False(t, ok)

	id, _, created := s.Ensure(httptest.NewRecorder(), req)
	assert.True(t, created)
	assert.NotEqual(t, "gone", id)
}

func TestOverflowClosesOldestController(t *testing.T) {
	tr := newTracked()
	s := NewStore(Config{TTL: time.Hour, MaxSessions: 1}, tr.factory, nil)

	first, c := s.Create()
	require.NoError(t, c.FetchRecommendation(context.Background()))
	require.Equal(t, 1, tr.renderers[first].Live())

	s.Create()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, tr.renderers[first].Live())
	_, ok := s.Get(first)
	assert.False(t, ok)
}

func TestCloseEndsAllSessions(t *testing.T) {
	tr := newTracked()
	s := NewStore(Config{TTL: time.Hour, MaxSessions: 5}, tr.factory, nil)
	for i := 0; i < 3; i++ {
		_, c := s.Create()
		require.NoError(t, c.FetchRecommendation(context.Background()))
	}
	s.Close()
	assert.Zero(t, s.Len())
	for id, r := range tr.renderers {
		assert.Zero(t, r.Live(), "session %s still holds charts", id)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	s := NewStore(Config{TTL: time.Hour, MaxSessions: 5, CleanupInterval: time.Millisecond}, newTracked().factory, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
