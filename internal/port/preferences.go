package port

import (
	"context"

	"devisflow/internal/domain"
)

// PreferenceStore persists per-user preferences. Get returns
// domain.ErrNotFound when nothing was saved.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (*domain.Preferences, error)
	Save(ctx context.Context, userID string, prefs domain.Preferences) error
}
