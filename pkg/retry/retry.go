// Package retry は試行回数と待機間隔を値として受け取るリトライを cenkalti/backoff の上に提供します。
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy はリトライの方針です。
type Policy struct {
	MaxAttempts int
	// NewBackOff は Do の呼び出しごとに待機間隔の系列を生成します。nil の場合は待機しません。
	NewBackOff func() backoff.BackOff
}

// Constant は固定間隔の系列を生成する関数を返します。
func Constant(d time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff { return backoff.NewConstantBackOff(d) }
}

// NewPolicy は固定間隔のポリシーを作成します。
func NewPolicy(maxAttempts int, interval time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		NewBackOff:  Constant(interval),
	}
}

// Do は fn が成功するか試行回数を使い切るまで実行し、最後のエラーを返します。
// 待機中に ctx が終了した場合も最後のエラーを辿れる形で返します。
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.NewBackOff != nil {
		b = p.NewBackOff()
	}
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	var (
		attempt int
		lastErr error
	)
	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		lastErr = fn(ctx, attempt)
		return lastErr
	}, b)
	if err == nil {
		return nil
	}
	if lastErr != nil && !errors.Is(err, lastErr) {
		return fmt.Errorf("%w (context: %v)", lastErr, err)
	}
	return err
}
