package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/quillpost/server/internal/config"
	"codeberg.org/quillpost/server/quillpost/refreshtokens"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-for-testing"
	testIssuer = "quillpost-test"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*users.User
	err   error
}

func newFakeUsers(list ...*users.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*users.User)}
	for _, u := range list {
		f.users[u.ID] = u
	}

	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}

	return nil, users.ErrUserNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, userID int64) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	if u, ok := f.users[userID]; ok {
		return u, nil
	}

	return nil, users.ErrUserNotFound
}

func (f *fakeUsers) remove(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.users, userID)
}

type fakeRefreshStore struct {
	mu      sync.Mutex
	slots   map[int64]string
	puts    int
	deletes int
	err     error
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{slots: make(map[int64]string)}
}

func (f *fakeRefreshStore) Put(_ context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.puts++
	f.slots[userID] = token

	return nil
}

func (f *fakeRefreshStore) FindByToken(_ context.Context, token string) (*refreshtokens.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	for userID, stored := range f.slots {
		if stored == token {
			return &refreshtokens.RefreshToken{UserID: userID, TokenHash: refreshtokens.HashToken(token)}, nil
		}
	}

	return nil, refreshtokens.ErrRefreshTokenNotFound
}

func (f *fakeRefreshStore) DeleteByUserID(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes++
	delete(f.slots, userID)

	return nil
}

func (f *fakeRefreshStore) slot(userID int64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.slots[userID]
	return token, ok
}

// a movable clock for expiry tests
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func testUser() *users.User {
	return &users.User{ID: 1, Email: "ada@example.com", Nickname: "ada"}
}

func newTestProvider(t *testing.T, finder UserFinder) (*TokenProvider, *testClock) {
	t.Helper()

	clock := &testClock{now: testNow}

	provider, err := NewTokenProvider(config.JWTConfig{
		SecretKey: testSecret,
		Issuer:    testIssuer,
	}, finder, WithClock(clock.Now))
	require.NoError(t, err)

	return provider, clock
}
