package refreshtokens

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"codeberg.org/quillpost/server/internal/storage"
)

func NewRepository(db storage.DBTX) *Repository {
	return &Repository{db: db}
}

// stores token as the user's only refresh token, replacing any previous one
func (r *Repository) Put(ctx context.Context, userID int64, token string) error {
	if _, err := r.db.ExecContext(ctx, queryPut, userID, HashToken(token)); err != nil {
		return fmt.Errorf("put refresh token: %w", err)
	}

	return nil
}

// looks up the slot holding exactly this token
func (r *Repository) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	var rt RefreshToken

	err := r.db.QueryRowContext(ctx, queryFindByTokenHash, HashToken(token)).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.TokenHash,
		&rt.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}

		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	return &rt, nil
}

// empties the user's slot; a missing slot is not an error
func (r *Repository) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, queryDeleteByUserID, userID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// drops slots last written before cutoff; their tokens have expired
func (r *Repository) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, queryDeleteUpdatedBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}

	return result.RowsAffected()
}

// hex sha-256 digest of a token, the form tokens are stored in
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
