package asset

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/httpkit"
)

// ErrHTMLResponse はバイナリの代わりに HTML のエラーページが返された場合のエラーです。
var ErrHTMLResponse = errors.New("HTML レスポンスを受信しました")

// Fetcher はマニフェストおよびアセットの取得元です。
// contentType は取得元が判定できない場合は空文字になります。
type Fetcher interface {
	Fetch(ctx context.Context, location string) (data []byte, contentType string, err error)
}

// NewFetcher は baseURL の形式に応じて HTTP またはローカルディレクトリの Fetcher を返します。
func NewFetcher(baseURL string, client *httpkit.Client) Fetcher {
	if u, err := url.Parse(baseURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &HTTPFetcher{BaseURL: baseURL, Client: client}
	}
	return &DirFetcher{Root: baseURL}
}

// ClientOptions は NewHTTPClient および NewAssetClient の設定です。
type ClientOptions struct {
	PreferIPv4 bool
	Timeout    time.Duration
	// AllowPrivateNetwork は localhost などの内部アドレスへのアセット取得を許可します。
	AllowPrivateNetwork bool
}

func (o ClientOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 120 * time.Second
	}
	return o.Timeout
}

// NewHTTPClient はモデル呼び出し用の HTTP クライアントを生成します。
func NewHTTPClient(opts ClientOptions) *http.Client {
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if opts.PreferIPv4 {
				return dialer.DialContext(ctx, "tcp4", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	}

	return &http.Client{
		Timeout:   opts.timeout(),
		Transport: transport,
	}
}

// NewAssetClient はアセット取得用の httpkit クライアントを生成します。
// 既定では SSRF 対策付きのクライアントを使い、AllowPrivateNetwork の場合のみ検証を外します。
func NewAssetClient(opts ClientOptions) *httpkit.Client {
	if opts.AllowPrivateNetwork {
		return httpkit.New(opts.timeout(),
			httpkit.WithHTTPClient(NewHTTPClient(opts)),
			httpkit.WithSkipNetworkValidation(true),
		)
	}
	return httpkit.New(opts.timeout())
}

// HTTPFetcher は静的ファイルサーバーから取得します。
// 応答サイズが httpkit.MaxResponseBodySize を超える場合は切り詰めずにエラーを返します。
type HTTPFetcher struct {
	BaseURL string
	Client  *httpkit.Client
}

// Fetch は location が絶対 URL でなければ BaseURL からの相対パスとして GET します。
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	target, err := f.resolve(location)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	client := f.Client
	if client == nil {
		client = httpkit.New(httpkit.DefaultHTTPTimeout)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", target, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if isHTMLContentType(contentType) {
		resp.Body.Close()
		return nil, "", fmt.Errorf("GET %s: %w", target, ErrHTMLResponse)
	}

	data, err := httpkit.HandleResponse(resp)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", target, err)
	}
	return data, contentType, nil
}

func (f *HTTPFetcher) resolve(location string) (string, error) {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Host != "" {
		return location, nil
	}
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("ベース URL の解析に失敗しました (%s): %w", f.BaseURL, err)
	}
	ref, err := url.Parse(strings.TrimLeft(location, "/"))
	if err != nil {
		return "", fmt.Errorf("パスの解析に失敗しました (%s): %w", location, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String(), nil
}

// DirFetcher はローカルディレクトリから読み込みます。
type DirFetcher struct {
	Root string
}

// Fetch は location が存在する絶対パスであればそのまま、そうでなければ Root からの相対パスとして読み込みます。
func (f *DirFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	target := filepath.Join(f.Root, filepath.FromSlash(strings.TrimLeft(location, "/")))
	if filepath.IsAbs(location) {
		if _, err := os.Stat(location); err == nil {
			target = location
		}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, "", fmt.Errorf("ファイルの読み込みに失敗しました (%s): %w", target, err)
	}
	return data, "", nil
}

// ResolveMimeType は Content-Type ヘッダーを優先し、判定できない場合は拡張子から推定します。
// text/html は ErrHTMLResponse になります。
func ResolveMimeType(contentType, location string, data []byte) (string, error) {
	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	if isHTMLContentType(mediaType) {
		return "", ErrHTMLResponse
	}
	if mediaType != "" && mediaType != "application/octet-stream" && mediaType != "binary/octet-stream" {
		return mediaType, nil
	}
	if byExt := MimeTypeFromExt(location); byExt != "" {
		return byExt, nil
	}
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "text/html") {
		return "", ErrHTMLResponse
	}
	mt, _, _ := mime.ParseMediaType(detected)
	return mt, nil
}

func isHTMLContentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.EqualFold(mt, "text/html")
}
