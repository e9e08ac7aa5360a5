package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assetmix/internal/core"
)

func TestParseAssetInput(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        core.AssetInput
	}{
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "assetType=nasdaq&name=QQQ&amount=12%2C5",
			want:        core.AssetInput{Type: "nasdaq", Name: "QQQ", Amount: "12,5"},
		},
		{
			name:        "json with number amount",
			contentType: "application/json",
			body:        `{"assetType":"SP","name":"VOO","amount":100.25}`,
			want:        core.AssetInput{Type: "SP", Name: "VOO", Amount: "100.25"},
		},
		{
			name:        "json without content type",
			contentType: "",
			body:        `{"assetType":"cash","name":"wallet","amount":"3"}`,
			want:        core.AssetInput{Type: "cash", Name: "wallet", Amount: "3"},
		},
		{
			name:        "control characters and padding are stripped",
			contentType: "application/x-www-form-urlencoded",
			body:        "assetType=cash&name=%20bank%00%0A&amount=%201%20",
			want:        core.AssetInput{Type: "cash", Name: "bank", Amount: "1"},
		},
		{
			name:        "empty body",
			contentType: "application/x-www-form-urlencoded",
			body:        "",
			want:        core.AssetInput{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ui/assets", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			got, err := ParseAssetInput(req)
			if err != nil {
				t.Fatalf("ParseAssetInput: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAssetInputErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ui/assets", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	if _, err := ParseAssetInput(req); err == nil {
		t.Fatal("expected error for malformed JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+10)
	req = httptest.NewRequest(http.MethodPost, "/ui/assets", strings.NewReader("name="+big))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if _, err := ParseAssetInput(req); err != errBodyTooLarge {
		t.Fatalf("err = %v, want errBodyTooLarge", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\tb\x07c  "); got != "a\tbc" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
