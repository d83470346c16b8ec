package generator

const (
	// MaxSelectedTemplates はテンプレート選定で採用する最大件数です。
	MaxSelectedTemplates = 3
	// DefaultFileMimeType はファイル入力の MIME タイプが判定できない場合の値です。
	DefaultFileMimeType = "application/pdf"
	// defaultRateBurst は画像リクエストのレート制限のバースト数です。
	defaultRateBurst = 1
)
