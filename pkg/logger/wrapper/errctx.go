package wrap

import (
	"context"
	"errors"
)

// errorWithLogCtx carries the LogCtx that was current where the error happened.
type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.err.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.err
}

// ErrorCtx layers the LogCtx captured by Error over ctx, so the log line points at
// the failing action while keeping the caller's request id.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if errors.As(err, &e) && e != nil {
		return context.WithValue(ctx, LogCtxKey, merge(fromCtx(ctx), e.logCtx))
	}
	return ctx
}
