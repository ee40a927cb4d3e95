package wrap

import (
	"context"
	"errors"
)

// Error attaches the LogCtx of ctx to err. When err already carries one (an inner
// layer wrapped it), the inner fields win and ctx only fills the gaps, so the most
// specific action and ids survive up the stack.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	c := fromCtx(ctx)

	var inner *errorWithLogCtx
	if errors.As(err, &inner) {
		c = merge(c, inner.logCtx)
	}

	return &errorWithLogCtx{err: err, logCtx: c}
}

// merge returns base with every non-empty field of over applied.
func merge(base, over LogCtx) LogCtx {
	if over.Action != "" {
		base.Action = over.Action
	}
	if over.RiderID != "" {
		base.RiderID = over.RiderID
	}
	if over.RequestID != "" {
		base.RequestID = over.RequestID
	}
	if over.SessionID != "" {
		base.SessionID = over.SessionID
	}
	if over.ActivityID != "" {
		base.ActivityID = over.ActivityID
	}
	return base
}
