package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rushteam/placerec/metrics"
)

func TestEmbeddingClient_Search(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ids":["p1","p2",3],"dists":[0.1,0.2,0.3]}`))
	}))
	defer srv.Close()

	c := NewEmbeddingClient(srv.URL + "/")
	res := c.Search(context.Background(), "coffee . cafe", 200)

	if got.Text != "coffee . cafe" || got.TopK != 200 {
		t.Errorf("request body = %+v", got)
	}
	want := []string{"p1", "p2", "3"}
	if len(res.IDs) != len(want) {
		t.Fatalf("ids = %v, want %v", res.IDs, want)
	}
	for i := range want {
		if res.IDs[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, res.IDs[i], want[i])
		}
	}
	if d, ok := res.Dist(1); !ok || d != 0.2 {
		t.Errorf("Dist(1) = %v, %v", d, ok)
	}
}

func TestEmbeddingClient_DropsEmptyIDsWithDists(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantIDs   []string
		wantDists []float64
	}{
		{
			name:      "null and empty ids",
			body:      `{"ids":["p1",null,"p3","",5],"dists":[0.1,0.2,0.3,0.4,0.5]}`,
			wantIDs:   []string{"p1", "p3", "5"},
			wantDists: []float64{0.1, 0.3, 0.5},
		},
		{
			name:    "missing dists",
			body:    `{"ids":["p1",null,"p3"]}`,
			wantIDs: []string{"p1", "p3"},
		},
		{
			name:    "short dists",
			body:    `{"ids":["p1",null,"p3"],"dists":[0.1]}`,
			wantIDs: []string{"p1", "p3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := NewEmbeddingClient(srv.URL).Search(context.Background(), "q", 10)
			if len(res.IDs) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", res.IDs, tt.wantIDs)
			}
			for i := range tt.wantIDs {
				if res.IDs[i] != tt.wantIDs[i] {
					t.Errorf("ids[%d] = %q, want %q", i, res.IDs[i], tt.wantIDs[i])
				}
			}
			if len(res.Dists) != len(tt.wantDists) {
				t.Fatalf("dists = %v, want %v", res.Dists, tt.wantDists)
			}
			for i := range tt.wantDists {
				if d, ok := res.Dist(i); !ok || d != tt.wantDists[i] {
					t.Errorf("Dist(%d) = %v, %v, want %v", i, d, ok, tt.wantDists[i])
				}
			}
		})
	}
}

func TestEmbeddingClient_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ids": [`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewEmbeddingClient(srv.URL, WithEmbeddingTimeout(tt.timeout))
			res := c.Search(context.Background(), "q", 10)
			if !res.Empty() {
				t.Errorf("expected empty result, got %v", res.IDs)
			}
		})
	}
}

func TestEmbeddingClient_Disabled(t *testing.T) {
	c := NewEmbeddingClient("")
	if c.Enabled() {
		t.Fatal("client without endpoint should be disabled")
	}
	if res := c.Search(context.Background(), "q", 10); !res.Empty() {
		t.Errorf("disabled client returned %v", res.IDs)
	}
}

func TestEmbeddingClient_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewEmbeddingClient(srv.URL, WithEmbeddingBreaker(2, time.Hour))
	for i := 0; i < 5; i++ {
		if res := c.Search(context.Background(), "q", 10); !res.Empty() {
			t.Fatalf("call %d: expected empty", i)
		}
	}
	// 连续 2 次失败后熔断，后续请求不再打到服务
	if n := calls.Load(); n != 2 {
		t.Errorf("server calls = %d, want 2", n)
	}
	// 状态切换回调更新熔断器状态指标
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(embeddingBreakerName)); got != 2 {
		t.Errorf("breaker state gauge = %v, want 2 (open)", got)
	}
}
