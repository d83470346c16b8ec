package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	"github.com/shouni/go-http-kit/httpkit"
)

func testClient(srv *httptest.Server) *httpkit.Client {
	return httpkit.New(5*time.Second,
		httpkit.WithHTTPClient(srv.Client()),
		httpkit.WithSkipNetworkValidation(true),
	)
}

func TestLoader(t *testing.T) {
	var manifestHits, assetHits atomic.Int32
	png := []byte("\x89PNG\r\n\x1a\nfake")

	mux := http.NewServeMux()
	mux.HandleFunc("/brands/aurora/prompt_template.txt", func(w http.ResponseWriter, r *http.Request) {
		manifestHits.Add(1)
		w.Write([]byte("Template Root: brands/aurora\nAssets:\n- a_template/a.png :: cover\n"))
	})
	mux.HandleFunc("/brands/aurora/a_template/a.png", func(w http.ResponseWriter, r *http.Request) {
		assetHits.Add(1)
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(png)
	})
	mux.HandleFunc("/brands/aurora/doc.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf; charset=binary")
		w.Write([]byte("%PDF-1.4"))
	})
	mux.HandleFunc("/brands/aurora/missing.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>not found</html>"))
	})
	mux.HandleFunc("/brands/aurora/huge.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(bytes.Repeat([]byte{0}, int(httpkit.MaxResponseBodySize)+1024))
	})
	mux.HandleFunc("/brands/aurora/gone.png", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	brand := domain.BrandConfig{ID: "aurora", ManifestPath: "brands/aurora/prompt_template.txt"}

	t.Run("マニフェストを取得しキャッシュすること", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		for i := 0; i < 3; i++ {
			lib := loader.LoadLibrary(ctx, brand)
			if lib == nil || len(lib.Assets) != 1 {
				t.Fatalf("ライブラリ 実際 %+v", lib)
			}
		}
		if manifestHits.Load() != 1 {
			t.Errorf("マニフェスト取得回数 期待値 1, 実際 %d", manifestHits.Load())
		}
	})

	t.Run("存在しないマニフェストはnilを返すこと", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		if lib := loader.LoadLibrary(ctx, domain.BrandConfig{ID: "none", ManifestPath: "brands/none/m.txt"}); lib != nil {
			t.Errorf("nil を期待, 実際 %+v", lib)
		}
	})

	t.Run("アセットをbase64で返し拡張子からMIMEタイプを推定すること", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		a := loader.FetchInline(ctx, "brands/aurora/a_template/a.png")
		if a == nil {
			t.Fatal("アセットが取得できません")
		}
		if a.MimeType != "image/png" {
			t.Errorf("MimeType 期待値 image/png, 実際 %q", a.MimeType)
		}
		if a.Base64Data != base64.StdEncoding.EncodeToString(png) {
			t.Error("base64 データが一致しません")
		}
		loader.FetchInline(ctx, "brands/aurora/a_template/a.png")
		if assetHits.Load() != 1 {
			t.Errorf("アセット取得回数 期待値 1, 実際 %d", assetHits.Load())
		}
	})

	t.Run("Content-Typeヘッダーのパラメータを除去すること", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		a := loader.FetchInline(ctx, "brands/aurora/doc.pdf")
		if a == nil || a.MimeType != "application/pdf" {
			t.Errorf("実際 %+v", a)
		}
	})

	t.Run("HTMLのエラーページはnilを返すこと", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		if a := loader.FetchInline(ctx, "brands/aurora/missing.png"); a != nil {
			t.Errorf("nil を期待, 実際 %+v", a)
		}
	})

	t.Run("上限を超える応答は切り詰めずに失敗として扱うこと", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		if a := loader.FetchInline(ctx, "brands/aurora/huge.png"); a != nil {
			t.Errorf("nil を期待, 実際 %d バイト", len(a.Base64Data))
		}
	})

	t.Run("4xxの応答はnilを返すこと", func(t *testing.T) {
		loader := NewLoader(NewFetcher(srv.URL, testClient(srv)), 0)
		if a := loader.FetchInline(ctx, "brands/aurora/gone.png"); a != nil {
			t.Errorf("nil を期待, 実際 %+v", a)
		}
	})

	t.Run("ローカルディレクトリからも読み込めること", func(t *testing.T) {
		dir := t.TempDir()
		brandDir := filepath.Join(dir, "brands", "cedar")
		if err := os.MkdirAll(brandDir, 0o755); err != nil {
			t.Fatal(err)
		}
		os.WriteFile(filepath.Join(brandDir, "m.txt"), []byte("Assets:\n- cedar_logo.webp\n"), 0o644)
		os.WriteFile(filepath.Join(brandDir, "cedar_logo.webp"), []byte("RIFFxxxxWEBP"), 0o644)

		loader := NewLoader(NewFetcher(dir, nil), 0)
		lib := loader.LoadLibrary(ctx, domain.BrandConfig{ID: "cedar", ManifestPath: "brands/cedar/m.txt"})
		if lib == nil || len(lib.Assets) != 1 {
			t.Fatalf("ライブラリ 実際 %+v", lib)
		}
		a := loader.FetchInline(ctx, lib.Assets[0].FullPath)
		if a == nil || a.MimeType != "image/webp" {
			t.Errorf("実際 %+v", a)
		}
	})
}

// blockingFetcher は release が閉じられるまで応答を保留します。
type blockingFetcher struct {
	release chan struct{}
	calls   atomic.Int32
}

func (f *blockingFetcher) Fetch(ctx context.Context, location string) ([]byte, string, error) {
	f.calls.Add(1)
	select {
	case <-f.release:
		return []byte("\x89PNG\r\n\x1a\n"), "image/png", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func TestLoader_SharedFetch(t *testing.T) {
	t.Run("先行した呼び出し元がキャンセルしても後続の呼び出し元は結果を受け取れること", func(t *testing.T) {
		fetcher := &blockingFetcher{release: make(chan struct{})}
		loader := NewLoader(fetcher, 0)

		ctxA, cancelA := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancelA()
		resultA := make(chan *domain.InlineAsset, 1)
		go func() { resultA <- loader.FetchInline(ctxA, "brands/aurora/a.png") }()

		// A の取得が開始されてから B を合流させる
		for fetcher.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		resultB := make(chan *domain.InlineAsset, 1)
		go func() { resultB <- loader.FetchInline(context.Background(), "brands/aurora/a.png") }()

		if a := <-resultA; a != nil {
			t.Errorf("キャンセルした呼び出し元は nil を期待, 実際 %+v", a)
		}
		close(fetcher.release)

		b := <-resultB
		if b == nil || b.MimeType != "image/png" {
			t.Fatalf("後続の呼び出し元 実際 %+v", b)
		}
		if n := fetcher.calls.Load(); n != 1 {
			t.Errorf("取得回数 期待値 1, 実際 %d", n)
		}
		if again := loader.FetchInline(context.Background(), "brands/aurora/a.png"); again == nil {
			t.Error("取得結果がキャッシュされていません")
		}
	})
}

func TestFetcherReader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := FetcherReader{Fetcher: &DirFetcher{Root: dir}}

	t.Run("取得した内容を読み出せること", func(t *testing.T) {
		rc, err := r.Open(context.Background(), "a.png")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		defer rc.Close()
		got, _ := io.ReadAll(rc)
		if string(got) != "data" {
			t.Errorf("実際 %q", got)
		}
	})
	t.Run("存在しないファイルはエラーになること", func(t *testing.T) {
		if _, err := r.Open(context.Background(), "none.png"); err == nil {
			t.Error("エラーが返されませんでした")
		}
	})
}

func TestHTTPFetcher_HTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL, Client: testClient(srv)}
	if _, _, err := f.Fetch(context.Background(), "a.png"); !errors.Is(err, ErrHTMLResponse) {
		t.Errorf("ErrHTMLResponse を期待, 実際 %v", err)
	}
}

func TestResolveMimeType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		location    string
		want        string
		wantErr     bool
	}{
		{"ヘッダーを優先すること", "image/jpeg", "a.png", "image/jpeg", false},
		{"octet-streamは拡張子から推定すること", "application/octet-stream", "a.jpeg", "image/jpeg", false},
		{"ヘッダーが無ければ拡張子から推定すること", "", "doc.PDF", "application/pdf", false},
		{"text/htmlは拒否すること", "text/html", "a.png", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMimeType(tt.contentType, tt.location, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("エラー 実際 %v", err)
			}
			if got != tt.want {
				t.Errorf("期待値 %q, 実際 %q", tt.want, got)
			}
		})
	}
}
