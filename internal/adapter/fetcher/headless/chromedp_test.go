package headless

import (
	"net/http"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestNewChromedpValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewChromedp(Config{NavigationTimeout: -time.Second}, nil); err == nil {
		t.Fatal("expected error for negative navigation timeout")
	}
	fetcher, err := NewChromedp(Config{UserAgent: "jobtrack"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fetcher.Close()
	if fetcher.cfg.UserAgent != "jobtrack" {
		t.Fatalf("expected user agent to be kept, got %q", fetcher.cfg.UserAgent)
	}
}

func TestFetcherNavTimeoutDefault(t *testing.T) {
	t.Parallel()

	fetcher := &Fetcher{}
	if got := fetcher.navTimeout(); got != 45*time.Second {
		t.Fatalf("expected default nav timeout, got %v", got)
	}
	fetcher.cfg.NavigationTimeout = time.Second
	if got := fetcher.navTimeout(); got != time.Second {
		t.Fatalf("expected override to be used, got %v", got)
	}
}

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{200, 203, 299} {
		if err := checkStatus(code); err != nil {
			t.Errorf("checkStatus(%d) = %v, want nil", code, err)
		}
	}
	for _, code := range []int{199, 301, 404, 503} {
		if err := checkStatus(code); err == nil {
			t.Errorf("checkStatus(%d) = nil, want error", code)
		}
	}
}

func TestResponseMetaCaptureAndFallbacks(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeDocument,
		Response: &network.Response{
			Status:  404,
			URL:     "https://example.com/rendered",
			Headers: network.Headers{"content-type": "text/html", "X-Multi": []any{"a", "b"}},
		},
	})
	status, headers, url := meta.snapshotWithFallbacks("https://req", "https://final")
	if status != 404 || url != "https://example.com/rendered" {
		t.Fatalf("unexpected snapshot: status=%d url=%s", status, url)
	}
	if headers.Get("Content-Type") != "text/html" || len(headers.Values("X-Multi")) != 2 {
		t.Fatalf("unexpected headers: %v", headers)
	}

	meta = newResponseMeta()
	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeScript,
		Response: &network.Response{Status: 500, URL: "https://example.com/app.js"},
	})
	status, headers, url = meta.snapshotWithFallbacks("https://req", "https://final")
	if status != http.StatusOK || url != "https://final" || len(headers) != 0 {
		t.Fatalf("expected fallbacks, got status=%d url=%s headers=%v", status, url, headers)
	}

	_, _, url = newResponseMeta().snapshotWithFallbacks("https://req", "")
	if url != "https://req" {
		t.Fatalf("expected request url fallback, got %s", url)
	}
}
