package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	imagegen "github.com/shouni/gemini-image-kit/generator"
	"github.com/shouni/gemini-image-kit/ports"
	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

// ErrAPIKeyRequired は API キーが設定されていない場合のエラーです。
var ErrAPIKeyRequired = errors.New("GEMINI_API_KEY が設定されていません")

// ClientOptions は NewGeminiClient の設定です。
type ClientOptions struct {
	APIKey string
	// HTTPClient は JSON 応答を要求する呼び出しで使う genai クライアントの HTTP クライアントです。
	HTTPClient *http.Client
	// Downloader と Reader は画像エンジンの参照画像取得に使います。
	Downloader ports.Downloader
	Reader     ports.ContentReader
	// Cache は File API の URI を保持します。nil の場合は保持しません。
	Cache            ports.ImageCacher
	ImageTemperature float32
}

// textClientFactory は温度ごとのテキスト生成クライアントを返します。
type textClientFactory func(ctx context.Context, temperature float32) (gemini.Generator, error)

// GeminiClient は TextModel / ImageModel の実装です。
// JSON 応答は genai SDK を直接、平文の応答は go-gemini-client、画像は gemini-image-kit を経由します。
type GeminiClient struct {
	structured *genai.Client
	newText    textClientFactory
	image      ports.ImageExecutor

	mu    sync.Mutex
	texts map[float32]gemini.Generator
}

// NewGeminiClient は Gemini API 用のクライアントを初期化します。
func NewGeminiClient(ctx context.Context, opts ClientOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if opts.Downloader == nil || opts.Reader == nil {
		return nil, errors.New("画像エンジンの Downloader と Reader は必須です")
	}

	structured, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}

	newText := func(ctx context.Context, temperature float32) (gemini.Generator, error) {
		return gemini.NewClient(ctx, gemini.Config{APIKey: opts.APIKey, Temperature: genai.Ptr(temperature)})
	}

	imageClient, err := gemini.NewClient(ctx, gemini.Config{APIKey: opts.APIKey, Temperature: genai.Ptr(opts.ImageTemperature)})
	if err != nil {
		return nil, fmt.Errorf("画像用 Gemini クライアントの初期化に失敗しました: %w", err)
	}
	core, err := imagegen.NewGeminiImageCore(imageClient, opts.Reader, opts.Downloader, opts.Cache, 0, false)
	if err != nil {
		return nil, fmt.Errorf("画像エンジンの初期化に失敗しました: %w", err)
	}

	return newGeminiClient(structured, newText, core), nil
}

func newGeminiClient(structured *genai.Client, newText textClientFactory, image ports.ImageExecutor) *GeminiClient {
	return &GeminiClient{
		structured: structured,
		newText:    newText,
		image:      image,
		texts:      make(map[float32]gemini.Generator),
	}
}

// GenerateText はテキスト（または JSON）応答を返します。
// 平文の応答では MaxOutputTokens は適用されません。
func (g *GeminiClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if req.Format == FormatJSON {
		return g.generateJSON(ctx, req)
	}

	client, err := g.textClient(ctx, req.Temperature)
	if err != nil {
		return "", err
	}
	resp, err := client.GenerateWithParts(ctx, req.Model, toParts(req.Parts), gemini.GenerateOptions{
		SystemPrompt: req.SystemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", req.Model, err)
	}
	return resp.Text, nil
}

// generateJSON はスキーマ付きの JSON 応答を要求します。
func (g *GeminiClient) generateJSON(ctx context.Context, req TextRequest) (string, error) {
	if g.structured == nil {
		return "", errors.New("JSON 応答用のクライアントが初期化されていません")
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		MaxOutputTokens:  req.MaxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := g.structured.Models.GenerateContent(ctx, req.Model, toContents(req.Parts), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", req.Model, err)
	}
	return resp.Text(), nil
}

// textClient は温度ごとにクライアントを1つだけ生成して使い回します。
func (g *GeminiClient) textClient(ctx context.Context, temperature float32) (gemini.Generator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.texts[temperature]; ok {
		return c, nil
	}
	c, err := g.newText(ctx, temperature)
	if err != nil {
		return nil, fmt.Errorf("テキスト用 Gemini クライアントの初期化に失敗しました: %w", err)
	}
	g.texts[temperature] = c
	return c, nil
}

// GenerateImage は画像エンジン経由で1枚の画像を生成します。
// 温度はクライアント生成時の ImageTemperature が使われます。
func (g *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	resp, err := g.image.ExecuteRequest(ctx, req.Model, toParts(req.Parts), gemini.GenerateOptions{
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generate (%s): %w", req.Model, err)
	}
	return toImage(resp), nil
}

func toParts(parts []Part) []*genai.Part {
	gparts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			gparts = append(gparts, genai.NewPartFromBytes(p.Data, p.MimeType))
			continue
		}
		if p.Text != "" {
			gparts = append(gparts, genai.NewPartFromText(p.Text))
		}
	}
	return gparts
}

func toContents(parts []Part) []*genai.Content {
	return []*genai.Content{genai.NewContentFromParts(toParts(parts), genai.RoleUser)}
}

// toImage は画像エンジンの応答を Image に変換します。データが空の場合は nil です。
func toImage(resp *ports.ImageResponse) *Image {
	if resp == nil || len(resp.Data) == 0 {
		return nil
	}
	mime := resp.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: resp.Data, MimeType: mime}
}
