package generator

import (
	"context"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/brand"
	"github.com/shouni/go-infographic-kit/pkg/domain"

	"golang.org/x/sync/errgroup"
)

// BrandAssets はブランド解決とアセットライブラリの取得をまとめます。
type BrandAssets struct {
	Registry *brand.Registry
	Loader   *asset.Loader
}

// attachment は取得に成功したアセットとそのバイナリです。
type attachment struct {
	entry domain.AssetEntry
	part  ai.Part
}

// Library はヒントからブランドを解決し、そのライブラリを返します。ライブラリは nil の場合があります。
func (b *BrandAssets) Library(ctx context.Context, hint domain.BrandHint) (domain.BrandConfig, *domain.AssetLibrary) {
	cfg := b.Registry.Config(hint)
	return cfg, b.Loader.LoadLibrary(ctx, cfg)
}

// fetchAll はアセットを並列に取得し、成功したものだけを元の順序で返します。
func (b *BrandAssets) fetchAll(ctx context.Context, entries []domain.AssetEntry) []attachment {
	slots := make([]*attachment, len(entries))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, e := range entries {
		i, e := i, e
		eg.Go(func() error {
			inline := b.Loader.FetchInline(egCtx, e.FullPath)
			if inline == nil {
				return nil
			}
			part, err := ai.PartFromAsset(*inline)
			if err != nil {
				return nil
			}
			slots[i] = &attachment{entry: e, part: part}
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]attachment, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// brandDisplayName はマニフェストの Brand 行を優先して表示名を返します。
func brandDisplayName(cfg domain.BrandConfig, lib *domain.AssetLibrary) string {
	if lib != nil && lib.BrandName != "" {
		return lib.BrandName
	}
	return cfg.DisplayName
}
