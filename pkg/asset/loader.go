package asset

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	manifestKeyPrefix = "manifest:"
	inlineKeyPrefix   = "inline:"

	// sharedFetchTimeout は呼び出し元から切り離した共有取得の上限時間です。
	sharedFetchTimeout = 2 * time.Minute
)

// Loader はブランドのマニフェストとアセットのバイナリを取得し、キャッシュします。
// 取得に失敗した結果はキャッシュしません。
type Loader struct {
	fetcher Fetcher
	cache   *cache.Cache
	group   singleflight.Group
}

// NewLoader は Loader を生成します。ttl が 0 以下の場合はプロセス終了まで保持します。
func NewLoader(fetcher Fetcher, ttl time.Duration) *Loader {
	expiration := ttl
	cleanup := 2 * ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
		cleanup = 0
	}
	return &Loader{
		fetcher: fetcher,
		cache:   cache.New(expiration, cleanup),
	}
}

// LoadLibrary はブランドのアセットライブラリを返します。取得できない場合は nil を返します。
func (l *Loader) LoadLibrary(ctx context.Context, brand domain.BrandConfig) *domain.AssetLibrary {
	key := manifestKeyPrefix + brand.ID
	if v, ok := l.cache.Get(key); ok {
		if lib, ok := v.(*domain.AssetLibrary); ok {
			return lib
		}
	}
	if brand.ManifestPath == "" {
		slog.WarnContext(ctx, "マニフェストのパスが設定されていません", "brand", brand.ID)
		return nil
	}

	val, err := l.share(ctx, key, func(ctx context.Context) (interface{}, error) {
		data, _, err := l.fetcher.Fetch(ctx, brand.ManifestPath)
		if err != nil {
			return nil, err
		}
		lib := ParseManifest(string(data), path.Dir(brand.ManifestPath))
		l.cache.Set(key, lib, cache.DefaultExpiration)
		slog.InfoContext(ctx, "マニフェストを読み込みました",
			"brand", brand.ID,
			"assets", len(lib.Assets),
		)
		return lib, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "マニフェストの取得に失敗しました", "brand", brand.ID, "error", err)
		return nil
	}

	lib, ok := val.(*domain.AssetLibrary)
	if !ok {
		slog.ErrorContext(ctx, "unexpected return type from singleflight", "type", fmt.Sprintf("%T", val))
		return nil
	}
	return lib
}

// FetchInline はアセットを base64 で返します。取得できない場合は nil を返します。
func (l *Loader) FetchInline(ctx context.Context, fullPath string) *domain.InlineAsset {
	key := inlineKeyPrefix + fullPath
	if v, ok := l.cache.Get(key); ok {
		if a, ok := v.(*domain.InlineAsset); ok {
			return a
		}
	}

	val, err := l.share(ctx, key, func(ctx context.Context) (interface{}, error) {
		data, contentType, err := l.fetcher.Fetch(ctx, fullPath)
		if err != nil {
			return nil, err
		}
		mimeType, err := ResolveMimeType(contentType, fullPath, data)
		if err != nil {
			return nil, err
		}
		a := &domain.InlineAsset{
			Base64Data: base64.StdEncoding.EncodeToString(data),
			MimeType:   mimeType,
		}
		l.cache.Set(key, a, cache.DefaultExpiration)
		return a, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "アセットの取得に失敗しました", "path", fullPath, "error", err)
		return nil
	}

	a, ok := val.(*domain.InlineAsset)
	if !ok {
		slog.ErrorContext(ctx, "unexpected return type from singleflight", "type", fmt.Sprintf("%T", val))
		return nil
	}
	return a
}

// share は同じキーの取得を1回にまとめます。
// 取得は最初の呼び出し元のキャンセルから切り離して実行し、各呼び出し元は自身の ctx が終わった時点で待機をやめます。
func (l *Loader) share(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := l.group.DoChan(key, func() (interface{}, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
