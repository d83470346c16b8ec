package parser

import "regexp"

var (
	// FenceRegex は ```json や ``` で始まるコードフェンス行を特定します。
	FenceRegex = regexp.MustCompile("(?m)^\\s*```[a-zA-Z0-9_-]*\\s*$")
)
