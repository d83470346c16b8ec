package asset

import (
	"bytes"
	"context"
	"io"
)

// FetcherReader は Fetcher を Open 形式の読み込み口として公開します。
type FetcherReader struct {
	Fetcher Fetcher
}

// Open は location の内容をメモリに読み込んでから返します。
func (r FetcherReader) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	data, _, err := r.Fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
