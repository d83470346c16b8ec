// Package brand はブランドヒントから利用するブランド設定を解決します。
package brand

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	"gopkg.in/yaml.v3"
)

// DefaultBrandID はヒントから解決できない場合に使うブランドです。
const DefaultBrandID = "aurora"

// DefaultBrands は組み込みのブランド定義です。
var DefaultBrands = []domain.BrandConfig{
	{
		ID:           "aurora",
		DisplayName:  "Aurora",
		ManifestPath: "brands/aurora/prompt_template.txt",
		LookupTokens: []string{"aurora", "aur"},
	},
	{
		ID:           "beacon",
		DisplayName:  "Beacon",
		ManifestPath: "brands/beacon/prompt_template.txt",
		LookupTokens: []string{"beacon", "bcn"},
	},
	{
		ID:           "cedar",
		DisplayName:  "Cedar",
		ManifestPath: "brands/cedar/prompt_template.txt",
		LookupTokens: []string{"cedar"},
	},
}

// Registry は起動時に確定する読み取り専用のブランド一覧です。
type Registry struct {
	brands    []domain.BrandConfig
	defaultID string
}

// registryFile は LoadRegistry が読み込む YAML の形式です。
type registryFile struct {
	Default string               `yaml:"default"`
	Brands  []domain.BrandConfig `yaml:"brands"`
}

// NewRegistry は宣言順を保持した Registry を生成します。
// defaultID が一覧に無い場合は先頭のブランドを既定にします。
func NewRegistry(brands []domain.BrandConfig, defaultID string) (*Registry, error) {
	if len(brands) == 0 {
		return nil, errors.New("ブランドが1件も定義されていません")
	}
	seen := make(map[string]bool, len(brands))
	for _, b := range brands {
		if b.ID == "" {
			return nil, errors.New("ID が空のブランドがあります")
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("ブランド ID が重複しています: %s", b.ID)
		}
		seen[b.ID] = true
	}
	if !seen[defaultID] {
		defaultID = brands[0].ID
	}
	return &Registry{
		brands:    append([]domain.BrandConfig(nil), brands...),
		defaultID: defaultID,
	}, nil
}

// DefaultRegistry は組み込みのブランドで Registry を生成します。
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(DefaultBrands, DefaultBrandID)
	return r
}

// LoadRegistry は YAML ファイルからブランド一覧を読み込みます。path が空の場合は組み込みを返します。
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ブランド定義ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ブランド定義ファイルのパースに失敗しました (%s): %w", path, err)
	}
	return NewRegistry(f.Brands, f.Default)
}

// Resolve はヒントからブランド ID を返します。常に有効な ID を返します。
// 優先順位: 既知の BrandID、ファイル名に含まれる LookupTokens（宣言順）、既定ブランド。
func (r *Registry) Resolve(hint domain.BrandHint) string {
	if id := strings.TrimSpace(hint.BrandID); id != "" {
		if _, ok := r.Lookup(id); ok {
			return id
		}
	}
	if name := strings.ToLower(hint.FileName); name != "" {
		for _, b := range r.brands {
			for _, token := range b.LookupTokens {
				if token != "" && strings.Contains(name, strings.ToLower(token)) {
					return b.ID
				}
			}
		}
	}
	return r.defaultID
}

// Lookup は ID に対応するブランド設定を返します。
func (r *Registry) Lookup(id string) (domain.BrandConfig, bool) {
	for _, b := range r.brands {
		if b.ID == id {
			return b, true
		}
	}
	return domain.BrandConfig{}, false
}

// Config は Resolve した結果のブランド設定を返します。
func (r *Registry) Config(hint domain.BrandHint) domain.BrandConfig {
	b, _ := r.Lookup(r.Resolve(hint))
	return b
}

// Brands は宣言順のブランド一覧を返します。
func (r *Registry) Brands() []domain.BrandConfig {
	return append([]domain.BrandConfig(nil), r.brands...)
}
