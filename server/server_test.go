package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
)

type fakeRecommender struct {
	calls int
	last  core.Request
	recs  []core.Recommendation
	err   error
	panic bool
}

func (f *fakeRecommender) Recommend(_ context.Context, req core.Request) ([]core.Recommendation, error) {
	f.calls++
	f.last = req
	if f.panic {
		panic("boom")
	}
	return f.recs, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestRecommend_OK(t *testing.T) {
	rating := 4.8
	fake := &fakeRecommender{recs: []core.Recommendation{
		{PlaceID: "c1", Name: "Blue Tokai", Score: 0.9, DistanceKm: 0.1, Tags: []string{"cafe"}, AvgRating: &rating},
	}}
	h := New(fake, Options{}).Handler()

	for _, path := range []string{"/api/recommender/recommend", "/recommend"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, path,
				`{"userId":"u1","lat":28.6139,"lon":77.209,"query":"coffee","topk":3,"radiusKm":2}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q", ct)
			}
			if rec.Header().Get("X-Request-Id") == "" {
				t.Error("missing X-Request-Id header")
			}
			var got []core.Recommendation
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 1 || got[0].PlaceID != "c1" {
				t.Fatalf("got %+v", got)
			}
			want := core.Request{UserID: "u1", Lat: 28.6139, Lon: 77.209, Query: "coffee", TopK: 3, RadiusKm: 2}
			if fake.last != want {
				t.Errorf("request = %+v, want %+v", fake.last, want)
			}
		})
	}
}

func TestRecommend_OptionalFieldsZero(t *testing.T) {
	fake := &fakeRecommender{}
	h := New(fake, Options{}).Handler()

	rec := do(t, h, http.MethodPost, "/recommend", `{"userId":"u1","lat":0,"lon":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fake.last.TopK != 0 || fake.last.RadiusKm != 0 {
		t.Errorf("optional fields should stay zero, got %+v", fake.last)
	}
	// nil 结果序列化为空数组
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestRecommend_TopKConversion(t *testing.T) {
	tests := []struct {
		name string
		topk string
		want int
	}{
		{"integer", "7", 7},
		{"fraction truncates", "2.9", 2},
		{"negative", "-3", 0},
		{"huge", "1e19", math.MaxInt32},
		{"just above int32", "4294967296", math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRecommender{}
			h := New(fake, Options{}).Handler()
			rec := do(t, h, http.MethodPost, "/recommend", `{"userId":"u1","lat":1,"lon":2,"topk":`+tt.topk+`}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if fake.last.TopK != tt.want {
				t.Errorf("TopK = %d, want %d", fake.last.TopK, tt.want)
			}
		})
	}
}

func TestRecommend_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing userId", `{"lat":1,"lon":2}`},
		{"empty userId", `{"userId":"","lat":1,"lon":2}`},
		{"missing lat", `{"userId":"u1","lon":2}`},
		{"null lon", `{"userId":"u1","lat":1,"lon":null}`},
		{"string lat", `{"userId":"u1","lat":"1","lon":2}`},
		{"malformed", `{"userId":`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRecommender{}
			h := New(fake, Options{}).Handler()
			rec := do(t, h, http.MethodPost, "/api/recommender/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeError(t, rec); msg != errInvalidRequest {
				t.Errorf("error = %q", msg)
			}
			if fake.calls != 0 {
				t.Errorf("recommender called %d times", fake.calls)
			}
		})
	}
}

func TestRecommend_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid input", core.InvalidInput(errors.New("lat out of range")), http.StatusBadRequest, errInvalidRequest},
		{"storage failure", core.StorageFailure("places_by_ids", errors.New("conn reset")), http.StatusInternalServerError, errInternal},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, errInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeRecommender{err: tt.err}, Options{}).Handler()
			rec := do(t, h, http.MethodPost, "/recommend", `{"userId":"u1","lat":1,"lon":2}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			msg := decodeError(t, rec)
			if msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
			if strings.Contains(rec.Body.String(), "conn reset") {
				t.Error("internal detail leaked to client")
			}
		})
	}
}

func TestRecommend_PanicRecovered(t *testing.T) {
	h := New(&fakeRecommender{panic: true}, Options{}).Handler()
	rec := do(t, h, http.MethodPost, "/recommend", `{"userId":"u1","lat":1,"lon":2}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != errInternal {
		t.Errorf("error = %q", msg)
	}
}

func TestHealth(t *testing.T) {
	h := New(&fakeRecommender{}, Options{}).Handler()
	rec := do(t, h, http.MethodGet, "/api/recommender/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body["ok"] {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := New(&fakeRecommender{}, Options{}).Handler()
	do(t, h, http.MethodGet, "/api/recommender/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "placerec_api_requests_total") {
		t.Error("api request counter not exported")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := New(&fakeRecommender{}, Options{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/recommender/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	h := New(&fakeRecommender{}, Options{RateLimit: 2}).Handler()
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/recommend", `{"userId":"u1","lat":1,"lon":2}`)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", codes[2])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(&fakeRecommender{}, Options{}).Handler()
	rec := do(t, h, http.MethodGet, "/recommend", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
