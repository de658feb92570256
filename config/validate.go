package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 校验配置，返回所有问题的合并错误。
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must be >= 0"))
	}

	r := c.Recommend
	if r.MaxRadiusKm <= 0 {
		errs = append(errs, errors.New("recommend.max_radius_km must be > 0"))
	}
	if r.DefaultTopK <= 0 || r.MaxTopK <= 0 {
		errs = append(errs, errors.New("recommend.default_topk and recommend.max_topk must be > 0"))
	} else if r.DefaultTopK > r.MaxTopK {
		errs = append(errs, fmt.Errorf("recommend.default_topk %d exceeds recommend.max_topk %d", r.DefaultTopK, r.MaxTopK))
	}
	if r.CacheTTL <= 0 {
		errs = append(errs, errors.New("recommend.cache_ttl must be > 0"))
	}
	if r.HistoryWindow <= 0 || r.HistoryLimit <= 0 {
		errs = append(errs, errors.New("recommend.history_window and recommend.history_limit must be > 0"))
	}
	if r.EmbeddingTopK <= 0 || r.PopularLimit <= 0 {
		errs = append(errs, errors.New("recommend.embedding_topk and recommend.popular_limit must be > 0"))
	}

	if c.Embedding.URL != "" {
		if err := validateURL(c.Embedding.URL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("embedding.url: %w", err))
		}
	}
	if c.Embedding.Timeout <= 0 {
		errs = append(errs, errors.New("embedding.timeout must be > 0"))
	}

	if c.Cache.RedisURL != "" {
		if err := validateURL(c.Cache.RedisURL, "redis", "rediss", "unix"); err != nil {
			errs = append(errs, fmt.Errorf("cache.redis_url: %w", err))
		}
	}
	if c.Database.MongoURI != "" {
		if err := validateURL(c.Database.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			errs = append(errs, fmt.Errorf("database.mongo_uri: %w", err))
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("scheme %q not one of %s", u.Scheme, strings.Join(schemes, ", "))
}
