package config

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-infographic-kit/pkg/config"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultOutputDir   = "output"
	DefaultLanguage    = "en"
)

// AppConfig は CLI 全体の環境設定を保持する構造体なのだ。
type AppConfig struct {
	Pipeline    config.Config
	BrandsFile  string
	HTTPTimeout time.Duration
	// AllowPrivateAssets は localhost などの内部アドレスからのアセット取得を許可するのだ。
	AllowPrivateAssets bool
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *AppConfig {
	cfg := config.NewConfig(envutil.GetEnv("GEMINI_API_KEY", ""))
	cfg.GeminiModel = envutil.GetEnv("GEMINI_MODEL", config.DefaultGeminiModel)
	cfg.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", config.DefaultImageModel)
	cfg.AssetBaseURL = envutil.GetEnv("ASSET_BASE_URL", config.DefaultAssetBaseURL)
	cfg.ImageCount = envutil.GetEnvAsInt("IMAGE_COUNT", config.DefaultImageCount)
	cfg.StageTimeout = envSeconds("STAGE_TIMEOUT_SECONDS", config.DefaultStageTimeout)
	cfg.CacheTTL = envSeconds("CACHE_TTL_SECONDS", config.DefaultCacheTTL)
	cfg.RateInterval = envSeconds("IMAGE_RATE_INTERVAL_SECONDS", config.DefaultRateInterval)

	return &AppConfig{
		Pipeline:    cfg,
		BrandsFile:  envutil.GetEnv("BRANDS_FILE", ""),
		HTTPTimeout: envSeconds("HTTP_TIMEOUT_SECONDS", DefaultHTTPTimeout),

		AllowPrivateAssets: envutil.GetEnvAsBool("ASSET_ALLOW_PRIVATE_NETWORK", false),
	}
}

// envSeconds は秒数の環境変数を読み込むのだ。0 以下もそのまま受け付けるのだ。
func envSeconds(key string, fallback time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("環境変数が秒数ではないので既定値を使うのだ", "key", key, "value", raw)
		return fallback
	}
	return time.Duration(v * float64(time.Second))
}
