package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"devisflow/internal/domain"
	"devisflow/internal/port"
)

type apiKeyRepo struct {
	db *sqlx.DB
}

// NewAPIKeyRepo creates a PostgreSQL-backed CredentialStore reading the
// api_keys table.
func NewAPIKeyRepo(db *sqlx.DB) port.CredentialStore {
	return &apiKeyRepo{db: db}
}

func (r *apiKeyRepo) APIKey(ctx context.Context, userID string, provider domain.ProviderID) (string, error) {
	var key string
	err := r.db.GetContext(ctx, &key,
		`SELECT api_key FROM api_keys
		 WHERE user_id = $1 AND provider = $2 AND active
		 LIMIT 1`, userID, string(provider))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", domain.ErrCredentialUnavailable, err)
	}
	return key, nil
}
