package domain

import (
	"errors"
	"fmt"
)

// 呼び出し側に公開される失敗の種類です。errors.Is で判定できます。
var (
	ErrAnalysisFailed    = errors.New("analysis failed")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrPlanFailed        = errors.New("plan generation failed")
	ErrGenerationFailed  = errors.New("image generation failed")
)

var userMessages = map[error]map[Language]string{
	ErrAnalysisFailed: {
		LanguageEnglish: "We couldn't analyze this content. Please try again in a moment.",
		LanguageChinese: "内容分析失败，请稍后重试。",
	},
	ErrMalformedResponse: {
		LanguageEnglish: "The AI response was incomplete. Try a shorter section of the document.",
		LanguageChinese: "AI 返回的内容不完整，请尝试缩短文档内容后重试。",
	},
	ErrPlanFailed: {
		LanguageEnglish: "We couldn't draft a layout plan. You can continue without one.",
		LanguageChinese: "无法生成版式方案，您可以跳过方案直接生成。",
	},
	ErrGenerationFailed: {
		LanguageEnglish: "No image could be generated. Please try again.",
		LanguageChinese: "未能生成任何图片，请重试。",
	},
}

// PipelineError はユーザーに表示可能なメッセージと内部原因を分離して保持します。
type PipelineError struct {
	Kind        error
	UserMessage string
	Err         error
}

// NewPipelineError は言語に応じた表示メッセージ付きのエラーを作成します。
func NewPipelineError(kind error, lang Language, cause error) *PipelineError {
	msg := kind.Error()
	if m, ok := userMessages[kind]; ok {
		msg = m[lang.Normalize()]
	}
	return &PipelineError{Kind: kind, UserMessage: msg, Err: cause}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is は Kind による判定を可能にします。
func (e *PipelineError) Is(target error) bool {
	return target == e.Kind
}

// UserMessageOf はエラーチェーンから表示用メッセージを取り出します。
func UserMessageOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.UserMessage
	}
	return "Something went wrong. Please try again."
}
