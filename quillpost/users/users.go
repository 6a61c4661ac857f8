package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "codeberg.org/quillpost/server/internal/errors"
	"codeberg.org/quillpost/server/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

// creates a new user repository
func NewRepository(db storage.DBTX) *Repository {
	return &Repository{db: db}
}

// inserts a new user; passwordHash and nickname may be empty
func (r *Repository) Save(ctx context.Context, email, passwordHash, nickname string) (*User, error) {
	user, err := scanUser(r.db.QueryRowContext(
		ctx,
		querySave,
		email,
		nullable(passwordHash),
		nullable(nickname),
	))

	if err != nil {
		return nil, fmt.Errorf("save user: %w", mapConstraintError(err))
	}

	return user, nil
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID int64) (*User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, queryFindByID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("find user by id: %w", err)
	}

	return user, nil
}

// finds a user by email, the principal name carried in token subjects
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, queryFindByEmail, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return user, nil
}

// upserts an OAuth2 user by email and refreshes the nickname from the provider.
// when the nickname belongs to someone else the existing nickname is kept.
func (r *Repository) FindOrCreateByEmail(ctx context.Context, email, nickname string) (*User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, queryFindOrCreateByEmail, email, nullable(nickname)))
	if err == nil {
		return user, nil
	}

	if !errors.Is(mapConstraintError(err), ErrNicknameTaken) || nickname == "" {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	user, err = scanUser(r.db.QueryRowContext(ctx, queryFindOrCreateByEmail, email, nullable("")))
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	return user, nil
}

// sets a new nickname for the user
func (r *Repository) UpdateNickname(ctx context.Context, userID int64, nickname string) (*User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, queryUpdateNickname, nullable(nickname), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("update nickname: %w", mapConstraintError(err))
	}

	return user, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user     User
		password sql.NullString
		nickname sql.NullString
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&password,
		&nickname,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	user.PasswordHash = password.String
	user.Nickname = nickname.String

	return &user, nil
}

// translates unique violations on users into domain errors
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !apperrors.IsUniqueViolation(err) || !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "nickname"):
		return ErrNicknameTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailExists
	}

	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
