package repositories

import (
	"context"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

type tokenRepo struct {
	db Database
}

func NewTokenRepository(db Database) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO tokens (id, user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.Revoked)
	return err
}

func (r *tokenRepo) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM tokens
		WHERE token_hash = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, tokenHash).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.Revoked, &token.CreatedAt)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *tokenRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tokens SET revoked = true WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *tokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE tokens SET revoked = true WHERE user_id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, userID)
	return err
}

func (r *tokenRepo) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM tokens WHERE expires_at < NOW()`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query)
	return err
}
