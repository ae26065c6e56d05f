package service

import (
	"context"

	"geoquiz/internal/cache"
	"geoquiz/internal/model"
)

// ModeService tracks which category a session plays next. The rotation
// order is fixed and cyclic; every category is reached before the cycle
// repeats.
type ModeService struct {
	store cache.SessionStore
}

// NewModeService creates a new mode service.
func NewModeService(store cache.SessionStore) *ModeService {
	return &ModeService{store: store}
}

// Current returns the category the session should play now. Unset or
// unrecognized persisted values fall back to the first category in
// rotation order.
func (s *ModeService) Current(ctx context.Context, sessionID string) (model.Category, error) {
	val, err := s.store.GetNextCategory(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if c, ok := model.ParseCategory(val); ok {
		return c, nil
	}
	return model.RotationOrder[0], nil
}

// Next returns the category after current in rotation order, wrapping at
// the end. An unrecognized value maps to the first category.
func (s *ModeService) Next(current model.Category) model.Category {
	for i, c := range model.RotationOrder {
		if c == current {
			return model.RotationOrder[(i+1)%len(model.RotationOrder)]
		}
	}
	return model.RotationOrder[0]
}

// Commit persists category as the session's next round category.
func (s *ModeService) Commit(ctx context.Context, sessionID string, category model.Category) error {
	return s.store.SetNextCategory(ctx, sessionID, string(category))
}
