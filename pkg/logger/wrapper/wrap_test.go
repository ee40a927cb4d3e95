package wrap

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorKeepsInnermostFields(t *testing.T) {
	base := WithRequestID(context.Background(), "req-1")

	inner := WithLogCtx(base, LogCtx{Action: "store_append", ActivityID: "a1"})
	err := Error(inner, errors.New("disk full"))

	outer := WithLogCtx(base, LogCtx{Action: "create_activity", RiderID: "demo"})
	err = Error(outer, fmt.Errorf("create: %w", err))

	got := fromCtx(ErrorCtx(context.Background(), err))
	want := LogCtx{Action: "store_append", RiderID: "demo", RequestID: "req-1", ActivityID: "a1"}
	if got != want {
		t.Fatalf("log ctx = %+v, want %+v", got, want)
	}
}

func TestErrorCtxKeepsCallerFields(t *testing.T) {
	err := Error(WithSessionID(context.Background(), "s1"), errors.New("boom"))

	caller := WithRequestID(context.Background(), "req-2")
	got := fromCtx(ErrorCtx(caller, err))
	if got.RequestID != "req-2" || got.SessionID != "s1" {
		t.Fatalf("log ctx = %+v", got)
	}
}

func TestErrorNil(t *testing.T) {
	if Error(context.Background(), nil) != nil {
		t.Fatal("nil error must stay nil")
	}
	if ctx := context.Background(); ErrorCtx(ctx, errors.New("plain")) != ctx {
		t.Fatal("plain error must not change ctx")
	}
}
