package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("session not found")

// Record is what survives between requests for one browser session.
type Record struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
}

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Store interface {
	Save(ctx context.Context, id string, rec Record) error
	Load(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	PushFlash(ctx context.Context, id string, f Flash) error
	PopFlashes(ctx context.Context, id string) ([]Flash, error)
}
