// Package users holds the per-user visibility preference: whether a
// dashboard opens on the public feed or the user's private drafts.
package users

import (
	"context"
	"errors"
	"fmt"

	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/store"
)

const usersCollection = "users"

var ErrInvalidMode = errors.New("invalid visibility mode")

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// GetVisibilityMode returns the user's stored mode. A missing profile
// reads as private.
func (s *Service) GetVisibilityMode(ctx context.Context, userID string) (models.VisibilityMode, error) {
	doc, err := s.store.Get(ctx, usersCollection+"/"+userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ModePrivate, nil
	}
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	mode, _ := doc.Data["visibilityMode"].(string)
	if !models.VisibilityMode(mode).Valid() {
		return models.ModePrivate, nil
	}
	return models.VisibilityMode(mode), nil
}

// SetVisibilityMode upserts the user's mode, preserving any other profile
// fields. Idempotent.
func (s *Service) SetVisibilityMode(ctx context.Context, userID string, mode models.VisibilityMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	err := s.store.Set(ctx, usersCollection+"/"+userID, store.Fields{
		"visibilityMode": string(mode),
	}, true)
	if err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}
