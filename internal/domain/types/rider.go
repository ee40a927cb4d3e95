package types

import "context"

// Context key for the authenticated rider (unexported to avoid collisions)
type riderID struct{}

var riderIDKey = &riderID{}

// WithRider stores the rider id in ctx.
func WithRider(ctx context.Context, rider string) context.Context {
	return context.WithValue(ctx, riderIDKey, rider)
}

// RiderFromContext returns the rider id from ctx, or AnonymousRider.
func RiderFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(riderIDKey).(string); ok && r != "" {
		return r
	}
	return AnonymousRider
}
