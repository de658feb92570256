package server

import (
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
)

const (
	errInvalidRequest = "userId, lat and lon required"
	errInternal       = "internal_error"
)

// recommendRequest 是请求体。lat/lon 用指针区分“缺失”与 0。
type recommendRequest struct {
	UserID   string   `json:"userId"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Query    string   `json:"query"`
	TopK     *float64 `json:"topk"`
	RadiusKm *float64 `json:"radiusKm"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var body recommendRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, s.opts.MaxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("invalid request body")
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}
	if body.UserID == "" || body.Lat == nil || body.Lon == nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	req := core.Request{
		UserID: body.UserID,
		Lat:    *body.Lat,
		Lon:    *body.Lon,
		Query:  body.Query,
	}
	if body.TopK != nil {
		req.TopK = topKFromJSON(*body.TopK)
	}
	if body.RadiusKm != nil {
		req.RadiusKm = *body.RadiusKm
	}

	recs, err := s.rec.Recommend(r.Context(), req)
	if err != nil {
		if core.IsInvalidInput(err) {
			writeError(w, http.StatusBadRequest, errInvalidRequest)
			return
		}
		// 内部错误细节只进日志
		logging.Ctx(r.Context()).Error().Err(err).
			Str("user_id", req.UserID).
			Msg("recommend failed")
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}
	if recs == nil {
		recs = []core.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// topKFromJSON 在转换为 int 之前截断到 int32 范围，超大值交给服务端按上限截断，
// 负数与非数值按未指定处理。
func topKFromJSON(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	default:
		return int(v)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		logging.Debug().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
