package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
)

type sessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, shop, access_token, scope, is_online, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			scope = EXCLUDED.scope,
			is_online = EXCLUDED.is_online,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.ID == "" {
		session.ID = domain.OfflineSessionID(session.Shop)
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.Shop,
		session.AccessToken,
		session.Scope,
		session.IsOnline,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert session", zap.String("shop", session.Shop), zap.Error(err))
		return err
	}
	return nil
}

func (r *sessionRepository) GetByShop(ctx context.Context, shop string) (*domain.Session, error) {
	query := `
		SELECT id, shop, access_token, scope, is_online, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	err := r.db.QueryRowContext(ctx, query, domain.OfflineSessionID(shop)).Scan(
		&session.ID,
		&session.Shop,
		&session.AccessToken,
		&session.Scope,
		&session.IsOnline,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get session", zap.String("shop", shop), zap.Error(err))
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByShop(ctx context.Context, shop string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE shop = $1`, shop)
	if err != nil {
		r.logger.Error("Failed to delete sessions", zap.String("shop", shop), zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}
