package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultImageModel     = "gemini-3-pro-image-preview"
	DefaultImageCount     = 3
	DefaultStageTimeout   = 3 * time.Minute
	DefaultCacheTTL       = 30 * time.Minute
	DefaultRateInterval   = 0
	DefaultAssetBaseURL   = "./public"
	DefaultAnalystTries   = 2
	DefaultAnalystBackoff = 1 * time.Second
)

// Config はパイプライン各ステージの動作設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey string
	GeminiModel  string
	ImageModel   string

	// --- Generation Settings ---
	RouterTemperature   float32
	AnalystTemperature  float32
	SelectorTemperature float32
	PlanTemperature     float32
	ImageTemperature    float32

	RouterMaxTokens   int32
	AnalystMaxTokens  int32
	SelectorMaxTokens int32
	PlanMaxTokens     int32

	// ImageCount は並列に発行する画像生成リクエスト数です。
	ImageCount int
	// RateInterval が 0 より大きい場合、画像リクエストの発行間隔を制限します。
	RateInterval time.Duration
	// EnableTemplateSelection はプラン生成前に AI でテンプレートを選定するかどうかです。
	EnableTemplateSelection bool

	// --- Asset Settings ---
	AssetBaseURL string
	CacheTTL     time.Duration

	// --- Timeout & Retries ---
	StageTimeout       time.Duration
	AnalystMaxAttempts int
	AnalystBackoff     time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:             DefaultGeminiModel,
		ImageModel:              DefaultImageModel,
		RouterTemperature:       0,
		AnalystTemperature:      0.2,
		SelectorTemperature:     0.2,
		PlanTemperature:         0.4,
		ImageTemperature:        0.2,
		RouterMaxTokens:         256,
		AnalystMaxTokens:        8192,
		SelectorMaxTokens:       1024,
		PlanMaxTokens:           4096,
		ImageCount:              DefaultImageCount,
		RateInterval:            DefaultRateInterval,
		EnableTemplateSelection: true,
		AssetBaseURL:            DefaultAssetBaseURL,
		CacheTTL:                DefaultCacheTTL,
		StageTimeout:            DefaultStageTimeout,
		AnalystMaxAttempts:      DefaultAnalystTries,
		AnalystBackoff:          DefaultAnalystBackoff,
	}
}

// NewConfig はデフォルト値で初期化された Config に API キーをセットして返します。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}
