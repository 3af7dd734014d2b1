package tumblr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/metrics"
)

const scenarioBody = `{"response":{"posts":[{"id":1,"blog_name":"x","caption":"","body":"B","type":"text","date":"2020-01-01T00:00:00","tags":["a","b"],"short_url":"http://s/1"}]}}`

func serve(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestClientFetch(t *testing.T) {
	var gotAccept, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(scenarioBody))
	}))
	defer ts.Close()

	m := metrics.New()
	c := NewClient(5*time.Second, WithMetrics(m))
	resp, err := c.Fetch(context.Background(), ts.URL+"/x.tumblr.com/posts/text?api_key=k")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if !strings.HasPrefix(gotUA, "tumblrsearch/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if len(resp.Response.Posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(resp.Response.Posts))
	}
	p := resp.Response.Posts[0]
	if p.ID != 1 || p.BlogName != "x" || p.Body != "B" || p.Caption != "" || p.ShortURL != "http://s/1" {
		t.Errorf("post = %+v", p)
	}
	if !p.Date.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", p.Date.Time)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Errorf("ok fetches = %v, want 1", got)
	}
}

func TestClientFetch_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		outcome    string
		wantStatus int
		wantMsg    string
	}{
		{"server error", http.StatusInternalServerError, `{"meta":{"status":500}}`, metrics.OutcomeHTTP, 500, "HTTP 500"},
		{"unauthorized", http.StatusUnauthorized, `{"meta":{"status":401,"msg":"Unauthorized"}}`, metrics.OutcomeHTTP, 401, "Unauthorized"},
		{"malformed json", http.StatusOK, `{"response":`, metrics.OutcomeDecode, 200, "decode response"},
		{"missing response", http.StatusOK, `{"meta":{"status":200}}`, metrics.OutcomeDecode, 200, `no "response"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := serve(t, tt.status, tt.body)
			m := metrics.New()
			c := NewClient(0, WithMetrics(m))

			resp, err := c.Fetch(context.Background(), ts.URL+"/b/posts/text?api_key=secret123")
			if err == nil {
				t.Fatalf("expected error, got %+v", resp)
			}
			if !errors.Is(err, domain.ErrFetchFailure) {
				t.Errorf("error %v is not ErrFetchFailure", err)
			}
			var fe *domain.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not *FetchError", err)
			}
			if fe.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", fe.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q missing %q", err, tt.wantMsg)
			}
			if strings.Contains(err.Error(), "secret123") {
				t.Errorf("api key leaked into error: %v", err)
			}
			if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(tt.outcome)); got != 1 {
				t.Errorf("%s fetches = %v, want 1", tt.outcome, got)
			}
		})
	}
}

func TestClientFetch_Transport(t *testing.T) {
	ts, _ := serve(t, http.StatusOK, scenarioBody)
	url := ts.URL + "/b/posts/text?api_key=secret123"
	ts.Close()

	m := metrics.New()
	_, err := NewClient(time.Second, WithMetrics(m)).Fetch(context.Background(), url)
	if !errors.Is(err, domain.ErrFetchFailure) {
		t.Fatalf("error = %v, want ErrFetchFailure", err)
	}
	if strings.Contains(err.Error(), "secret123") {
		t.Errorf("api key leaked into error: %v", err)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(metrics.OutcomeTransport)); got != 1 {
		t.Errorf("transport fetches = %v, want 1", got)
	}
}

func TestClientFetch_ContextCanceled(t *testing.T) {
	ts, hits := serve(t, http.StatusOK, scenarioBody)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(time.Second).Fetch(ctx, ts.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if *hits != 0 {
		t.Errorf("server hit %d times, want 0", *hits)
	}
}

func TestClientFetch_BadURL(t *testing.T) {
	_, err := NewClient(time.Second).Fetch(context.Background(), "http://[::1:bad/?api_key=secret123")
	if !errors.Is(err, domain.ErrFetchFailure) {
		t.Fatalf("error = %v, want ErrFetchFailure", err)
	}
	if strings.Contains(err.Error(), "secret123") {
		t.Errorf("api key leaked into error: %v", err)
	}
}

func TestClientFetch_ErrorBodyTruncated(t *testing.T) {
	ts, _ := serve(t, http.StatusBadGateway, strings.Repeat("x", 4096))
	_, err := NewClient(time.Second).Fetch(context.Background(), ts.URL)
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if len(fe.Body) != maxErrorBody {
		t.Errorf("body len = %d, want %d", len(fe.Body), maxErrorBody)
	}
}
