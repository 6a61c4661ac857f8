package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password", "nickname", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close() //nolint:errcheck,gosec // test cleanup
	})

	return NewRepository(db), mock
}

func TestSave_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\s+\(email,\s*password,\s*nickname\).*RETURNING`).
		WithArgs("ada@example.com", "$2a$hash", "ada").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(1), "ada@example.com", "$2a$hash", "ada", now, now))

	user, err := repo.Save(context.Background(), "ada@example.com", "$2a$hash", "ada")

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "ada", user.Nickname)
	assert.True(t, user.HasPassword())
}

func TestSave_EmptyNicknameStoredAsNull(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\b`).
		WithArgs("ada@example.com", "$2a$hash", nil).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(1), "ada@example.com", "$2a$hash", nil, now, now))

	user, err := repo.Save(context.Background(), "ada@example.com", "$2a$hash", "")

	require.NoError(t, err)
	assert.Empty(t, user.Nickname)
}

func TestSave_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\b`).
		WithArgs("ada@example.com", "$2a$hash", nil).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Save(context.Background(), "ada@example.com", "$2a$hash", "")

	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSave_OtherConstraintPassesThrough(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\b`).
		WithArgs("ada@example.com", "$2a$hash", nil).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "users_email_check"})

	_, err := repo.Save(context.Background(), "ada@example.com", "$2a$hash", "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailExists)
	assert.NotErrorIs(t, err, ErrNicknameTaken)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 7)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(3), "ada@example.com", nil, nil, now, now))

	user, err := repo.FindByEmail(context.Background(), "ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.False(t, user.HasPassword())
}

func TestFindByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+id,.*FROM\s+users\s+WHERE\s+email`).
		WithArgs("ada@example.com").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByEmail(context.Background(), "ada@example.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestFindOrCreateByEmail_UpdatesNickname(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\s+\(email,\s*nickname\).*ON\s+CONFLICT\s+\(email\)`).
		WithArgs("ada@example.com", "Ada Lovelace").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(3), "ada@example.com", nil, "Ada Lovelace", now, now))

	user, err := repo.FindOrCreateByEmail(context.Background(), "ada@example.com", "Ada Lovelace")

	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Nickname)
}

func TestFindOrCreateByEmail_NicknameTakenKeepsExisting(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)ON\s+CONFLICT\s+\(email\)`).
		WithArgs("ada@example.com", "ada").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_nickname_key"})

	mock.ExpectQuery(`(?s)ON\s+CONFLICT\s+\(email\)`).
		WithArgs("ada@example.com", nil).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(3), "ada@example.com", nil, nil, now, now))

	user, err := repo.FindOrCreateByEmail(context.Background(), "ada@example.com", "ada")

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
}

func TestUpdateNickname_Taken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^\s*UPDATE\s+users\s+SET\s+nickname`).
		WithArgs("grace", int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_nickname_key"})

	_, err := repo.UpdateNickname(context.Background(), 3, "grace")

	assert.ErrorIs(t, err, ErrNicknameTaken)
}

func TestUpdateNickname_UserMissing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^\s*UPDATE\s+users\s+SET\s+nickname`).
		WithArgs("grace", int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateNickname(context.Background(), 99, "grace")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
