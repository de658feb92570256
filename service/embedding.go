package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
)

const embeddingBreakerName = "embedding-search"

// EmbeddingClient 是语义检索服务的 HTTP 客户端。
//
// 语义检索只是尽力而为的相关性预筛：未配置端点、超时、非 200、响应无法解析、
// 熔断打开时都返回空结果，由编排层走热门兜底。错误只记日志与指标，从不返回给调用方。
//
//	POST {Endpoint}/search  {"text": "...", "topk": 200}
//	200 OK                  {"ids": ["p1", ...], "dists": [0.12, ...]}
type EmbeddingClient struct {
	// Endpoint 服务地址，例如 "http://localhost:8001"；为空表示未启用
	Endpoint string

	// Timeout 单次调用超时（默认 8s）
	Timeout time.Duration

	// BreakerThreshold 连续失败多少次后熔断（默认 5）
	BreakerThreshold uint32

	// BreakerCooldown 熔断后多久进入半开（默认 30s）
	BreakerCooldown time.Duration

	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[core.EmbeddingResult]
}

// EmbeddingOption EmbeddingClient 配置选项
type EmbeddingOption func(*EmbeddingClient)

// WithEmbeddingTimeout 设置单次调用超时
func WithEmbeddingTimeout(timeout time.Duration) EmbeddingOption {
	return func(c *EmbeddingClient) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithEmbeddingBreaker 设置熔断阈值与冷却时间
func WithEmbeddingBreaker(threshold uint32, cooldown time.Duration) EmbeddingOption {
	return func(c *EmbeddingClient) {
		if threshold > 0 {
			c.BreakerThreshold = threshold
		}
		if cooldown > 0 {
			c.BreakerCooldown = cooldown
		}
	}
}

// WithEmbeddingHTTPClient 替换底层 HTTP 客户端
func WithEmbeddingHTTPClient(hc *http.Client) EmbeddingOption {
	return func(c *EmbeddingClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewEmbeddingClient 创建语义检索客户端
func NewEmbeddingClient(endpoint string, opts ...EmbeddingOption) *EmbeddingClient {
	c := &EmbeddingClient{
		Endpoint:         strings.TrimRight(endpoint, "/"),
		Timeout:          core.DefaultEmbeddingTimeout,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
		httpClient:       &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.CircuitBreakerState.WithLabelValues(embeddingBreakerName).Set(0)
	threshold := c.BreakerThreshold
	c.cb = gobreaker.NewCircuitBreaker[core.EmbeddingResult](gobreaker.Settings{
		Name:        embeddingBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     c.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 调用方主动取消不算服务故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := logging.WithComponent("embedding")
			l.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return c
}

// Enabled 是否配置了服务端点
func (c *EmbeddingClient) Enabled() bool { return c.Endpoint != "" }

// Search 实现 core.EmbeddingSearcher。任何失败都返回空结果。
func (c *EmbeddingClient) Search(ctx context.Context, text string, topK int) core.EmbeddingResult {
	if !c.Enabled() {
		metrics.EmbeddingRequests.WithLabelValues("disabled").Inc()
		return core.EmbeddingResult{}
	}

	start := time.Now()
	res, err := c.cb.Execute(func() (core.EmbeddingResult, error) {
		return c.search(ctx, text, topK)
	})
	metrics.EmbeddingDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.EmbeddingRequests.WithLabelValues(result).Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("component", "embedding").
			Str("result", result).
			Msg("embedding search failed, returning empty candidates")
		return core.EmbeddingResult{}
	}

	if res.Empty() {
		metrics.EmbeddingRequests.WithLabelValues("empty").Inc()
	} else {
		metrics.EmbeddingRequests.WithLabelValues("ok").Inc()
	}
	return res
}

type searchRequest struct {
	Text string `json:"text"`
	TopK int    `json:"topk"`
}

type searchResponse struct {
	IDs   []candidateID `json:"ids"`
	Dists []float64     `json:"dists"`
}

func (c *EmbeddingClient) search(ctx context.Context, text string, topK int) (core.EmbeddingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body, err := json.Marshal(searchRequest{Text: text, TopK: topK})
	if err != nil {
		return core.EmbeddingResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/search", bytes.NewReader(body))
	if err != nil {
		return core.EmbeddingResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.EmbeddingResult{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return core.EmbeddingResult{}, core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable,
			fmt.Sprintf("embedding service error: status=%d", resp.StatusCode), errors.New(string(bodyBytes)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.EmbeddingResult{}, fmt.Errorf("decode response: %w", err)
	}

	return out.result(), nil
}

// result 丢弃空 id，并同步丢弃对应位置的距离，保持 IDs 与 Dists 对齐。
// 服务返回的距离少于 id 时不输出距离。
func (r searchResponse) result() core.EmbeddingResult {
	withDists := len(r.Dists) >= len(r.IDs) && len(r.Dists) > 0
	ids := make([]string, 0, len(r.IDs))
	var dists []float64
	if withDists {
		dists = make([]float64, 0, len(r.IDs))
	}
	for i, id := range r.IDs {
		if id == "" {
			continue
		}
		ids = append(ids, string(id))
		if withDists {
			dists = append(dists, r.Dists[i])
		}
	}
	return core.EmbeddingResult{IDs: ids, Dists: dists}
}

// candidateID 兼容字符串与数字两种 id 编码
type candidateID string

func (id *candidateID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = candidateID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = candidateID(n.String())
	return nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

var _ core.EmbeddingSearcher = (*EmbeddingClient)(nil)
