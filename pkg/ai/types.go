package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	"google.golang.org/genai"
)

// Part はプロンプトを構成するテキストまたはインラインバイナリです。
type Part struct {
	Text     string
	Data     []byte
	MimeType string
}

// IsInline はバイナリパートかどうかを返します。
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// TextPart はテキストパートを作成します。
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart はバイナリパートを作成します。
func InlinePart(data []byte, mimeType string) Part {
	return Part{Data: data, MimeType: mimeType}
}

// PartFromBase64 は base64 文字列からバイナリパートを作成します。
func PartFromBase64(b64, mimeType string) (Part, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Part{}, fmt.Errorf("base64 のデコードに失敗しました: %w", err)
	}
	return InlinePart(data, mimeType), nil
}

// PartFromAsset はキャッシュ済みアセットをバイナリパートに変換します。
func PartFromAsset(a domain.InlineAsset) (Part, error) {
	return PartFromBase64(a.Base64Data, a.MimeType)
}

// ResponseFormat はテキストモデルの応答形式です。
type ResponseFormat int

const (
	FormatPlain ResponseFormat = iota
	FormatJSON
)

// TextRequest はテキスト生成リクエストです。
type TextRequest struct {
	Model             string
	SystemInstruction string
	Parts             []Part
	Temperature       float32
	MaxOutputTokens   int32
	Format            ResponseFormat
	// Schema は FormatJSON のときのみ使用されます。
	Schema *genai.Schema
}

// ImageRequest は画像生成リクエストです。
type ImageRequest struct {
	Model       string
	Parts       []Part
	Temperature float32
	AspectRatio string
}

// Image は生成された画像です。
type Image struct {
	Data     []byte
	MimeType string
}

// DataURI は data URI 形式の文字列を返します。
func (img *Image) DataURI() string {
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// TextModel はテキスト生成の契約です。
type TextModel interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageModel は画像生成の契約です。
// 応答に画像が含まれない場合は (nil, nil) またはエラーを返します。
type ImageModel interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}
