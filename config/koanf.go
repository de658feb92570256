package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar 指定配置文件路径的环境变量
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths 未指定 CONFIG_PATH 时按顺序查找的配置文件
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/placerec/config.yaml",
}

// envMappings 环境变量到配置路径的映射；未列出的环境变量一律忽略
var envMappings = map[string]string{
	"http_host":        "server.host",
	"port":             "server.port",
	"http_rate_limit":  "server.rate_limit",
	"shutdown_timeout": "server.shutdown_timeout",

	"max_radius_km":         "recommend.max_radius_km",
	"default_topk":          "recommend.default_topk",
	"max_topk":              "recommend.max_topk",
	"cache_ttl":             "recommend.cache_ttl",
	"history_window":        "recommend.history_window",
	"history_limit":         "recommend.history_limit",
	"embedding_topk":        "recommend.embedding_topk",
	"popular_limit":         "recommend.popular_limit",
	"recommend_filter_expr": "recommend.filter_expr",

	"emb_service_url":       "embedding.url",
	"emb_timeout":           "embedding.timeout",
	"emb_breaker_threshold": "embedding.breaker_threshold",
	"emb_breaker_cooldown":  "embedding.breaker_cooldown",

	"redis_url":          "cache.redis_url",
	"redis_dial_timeout": "cache.dial_timeout",

	"mongodb_uri": "database.mongo_uri",
	"mongo_uri":   "database.mongo_uri",
	"db_name":     "database.name",
	"seed_path":   "database.seed_path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// durationPaths 允许写成纯数字（按秒解释）的时长配置
var durationPaths = []string{
	"server.read_timeout",
	"server.write_timeout",
	"server.shutdown_timeout",
	"recommend.cache_ttl",
	"recommend.history_window",
	"embedding.timeout",
	"embedding.breaker_cooldown",
	"cache.dial_timeout",
	"cache.sweep_interval",
	"database.connect_timeout",
}

var bareNumber = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Load 按 默认值 → 配置文件 → 环境变量 的顺序加载配置并校验。
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile 与 Load 相同，但使用指定的配置文件（为空时跳过文件层）。
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processDurationFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// processDurationFields 把 "300" 这类纯数字时长补上单位 "s"
func processDurationFields(k *koanf.Koanf) error {
	for _, path := range durationPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if bareNumber.MatchString(s) {
			if err := k.Set(path, s+"s"); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
