package workflow

import (
	"net/http"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/brand"
	"github.com/shouni/go-infographic-kit/pkg/config"
	"github.com/shouni/go-infographic-kit/pkg/prompts"

	"github.com/shouni/go-http-kit/httpkit"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
// nil のフィールドは Config から既定の実装で補われます。
type ManagerArgs struct {
	Config config.Config
	// HTTPClient はモデル呼び出しに使います。
	HTTPClient *http.Client
	// AssetClient はブランドアセットと参照画像の取得に使います。
	AssetClient *httpkit.Client
	Registry    *brand.Registry
	Fetcher    asset.Fetcher
	TextModel  ai.TextModel
	ImageModel ai.ImageModel
	// PromptBuilder は解析プロンプトの差し替え用です。
	PromptBuilder prompts.PromptBuilder
}
