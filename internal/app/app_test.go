package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
)

func TestNewApplicationRejectsUnknownMode(t *testing.T) {
	log := logger.New(io.Discard, "test", logger.LevelError)

	_, err := NewApplication(context.Background(), config.Config{Mode: "ride"}, log)
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
}

func TestRunWithoutService(t *testing.T) {
	a := &App{}
	if err := a.Run(context.Background()); !errors.Is(err, ErrServiceNotInitialized) {
		t.Fatalf("err = %v", err)
	}
}
