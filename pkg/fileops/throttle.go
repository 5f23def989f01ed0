package fileops

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// throttledReader stops on context cancellation and, when a limiter is
// set, waits for enough tokens to cover every chunk it returns.
type throttledReader struct {
	ctx     context.Context //nolint:containedctx // bound to one read loop
	r       io.Reader
	limiter *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if err := t.ctx.Err(); err != nil { //nolint:noinlineerr // checked before every chunk
		return 0, fmt.Errorf("read aborted: %w", err)
	}

	if t.limiter != nil && len(p) > t.limiter.Burst() {
		p = p[:t.limiter.Burst()]
	}

	n, err := t.r.Read(p)

	if n > 0 && t.limiter != nil {
		if waitErr := t.limiter.WaitN(t.ctx, n); waitErr != nil {
			return n, fmt.Errorf("read aborted: %w", waitErr)
		}
	}

	return n, err //nolint:wrapcheck // io.Reader contract
}
