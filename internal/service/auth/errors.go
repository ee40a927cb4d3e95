package auth

import (
	"errors"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

var (
	ErrInvalidToken = types.ErrInvalidToken
	ErrExpToken     = errors.New("token expired")
	ErrNoSecret     = errors.New("token secret is not configured")
)
