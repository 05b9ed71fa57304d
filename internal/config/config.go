package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// Valkey接続設定
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort string `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// 外部コラボレータ設定
	HSSAPIURL     string `envconfig:"HSS_API_URL" required:"true"`
	GatewayAPIURL string `envconfig:"GATEWAY_API_URL" required:"true"`

	// 待受設定
	S1ListenAddr   string `envconfig:"S1_LISTEN_ADDR" default:":36412"`
	HTTPListenAddr string `envconfig:"HTTP_LISTEN_ADDR" default:":8080"`
	GinMode        string `envconfig:"GIN_MODE" default:"release"`

	// MME識別子（GUTI割当に使用）
	PLMN    string `envconfig:"MME_PLMN" default:"00101"`
	GroupID uint16 `envconfig:"MME_GROUP_ID" default:"32769"`
	Code    uint8  `envconfig:"MME_CODE" default:"1"`

	// NASタイマー・再送設定
	T3450        time.Duration `envconfig:"T3450" default:"6s"`
	T3460        time.Duration `envconfig:"T3460" default:"6s"`
	T3470        time.Duration `envconfig:"T3470" default:"6s"`
	NASRetxLimit int           `envconfig:"NAS_RETX_LIMIT" default:"5"`

	// 無線コンテキスト設定ガードタイマー
	ContextSetupTimeout time.Duration `envconfig:"CONTEXT_SETUP_TIMEOUT" default:"2s"`

	// コラボレータ応答期限
	CollaboratorDeadline time.Duration `envconfig:"COLLABORATOR_DEADLINE" default:"5s"`

	DefaultAPN string `envconfig:"DEFAULT_APN" default:"internet"`

	// セキュリティアルゴリズム優先順位
	PreferredEIA []int `envconfig:"PREFERRED_EIA" default:"2,1"`
	PreferredEEA []int `envconfig:"PREFERRED_EEA" default:"0,2,1"`

	// ログ設定
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogMaskIMSI bool   `envconfig:"LOG_MASK_IMSI" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	for name, u := range map[string]string{
		"HSS_API_URL":     c.HSSAPIURL,
		"GATEWAY_API_URL": c.GatewayAPIURL,
	} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https://", name)
		}
	}
	if len(c.PLMN) != 5 && len(c.PLMN) != 6 {
		return fmt.Errorf("MME_PLMN must be 5 or 6 digits")
	}
	if c.NASRetxLimit < 1 {
		return fmt.Errorf("NAS_RETX_LIMIT must be positive")
	}
	for name, d := range map[string]time.Duration{
		"T3450":                 c.T3450,
		"T3460":                 c.T3460,
		"T3470":                 c.T3470,
		"CONTEXT_SETUP_TIMEOUT": c.ContextSetupTimeout,
		"COLLABORATOR_DEADLINE": c.CollaboratorDeadline,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if len(c.PreferredEIA) == 0 {
		return fmt.Errorf("PREFERRED_EIA must not be empty")
	}
	for _, a := range c.PreferredEIA {
		if a <= 0 || a > 7 {
			return fmt.Errorf("PREFERRED_EIA contains unsupported algorithm: %d", a)
		}
	}
	for _, a := range c.PreferredEEA {
		if a < 0 || a > 7 {
			return fmt.Errorf("PREFERRED_EEA contains unsupported algorithm: %d", a)
		}
	}
	return nil
}
