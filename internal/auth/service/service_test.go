package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"calltrack_backend/internal/auth/token"
	userrepo "calltrack_backend/internal/users/repository"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeTokenStore struct {
	stored  map[string]storedToken
	revoked []string
}

type storedToken struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{stored: make(map[string]storedToken)}
}

func (f *fakeTokenStore) StoreRefreshToken(_ context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error {
	f.stored[tokenHash] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) GetRefreshToken(_ context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	st, ok := f.stored[tokenHash]
	if !ok {
		return uuid.Nil, time.Time{}, apperr.Unauthorized("invalid refresh token")
	}
	return st.userID, st.expiresAt, nil
}

func (f *fakeTokenStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	f.revoked = append(f.revoked, tokenHash)
	delete(f.stored, tokenHash)
	return nil
}

type fakeUsers struct {
	byEmail map[string]*userrepo.User
	byID    map[uuid.UUID]*userrepo.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*userrepo.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*userrepo.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string        { return "test-access-secret" }
func (testConfig) GetJWTRefreshSecret() string       { return "test-refresh-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

func plainCompare(hash, plain string) error {
	if hash != plain {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService(store *fakeTokenStore, users *fakeUsers) *Service {
	return New(store, users, testConfig{}, plainCompare)
}

func testUser(active bool) *userrepo.User {
	return &userrepo.User{
		ID:           uuid.New(),
		Email:        "rep@example.com",
		PasswordHash: "correct-horse",
		FullName:     "Eva de Vries",
		Role:         "salesperson",
		IsActive:     active,
	}
}

func TestSignIn(t *testing.T) {
	user := testUser(true)
	users := &fakeUsers{
		byEmail: map[string]*userrepo.User{user.Email: user},
		byID:    map[uuid.UUID]*userrepo.User{user.ID: user},
	}
	store := newFakeTokenStore()
	svc := newTestService(store, users)

	pair, err := svc.SignIn(context.Background(), user.Email, "correct-horse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("SignIn() returned empty token pair: %+v", pair)
	}

	if _, ok := store.stored[token.HashSHA256(pair.RefreshToken)]; !ok {
		t.Error("refresh token hash not persisted")
	}
}

func TestSignInRejections(t *testing.T) {
	active := testUser(true)
	inactive := testUser(false)
	inactive.Email = "gone@example.com"

	users := &fakeUsers{byEmail: map[string]*userrepo.User{
		active.Email:   active,
		inactive.Email: inactive,
	}}
	svc := newTestService(newFakeTokenStore(), users)

	tests := []struct {
		name     string
		email    string
		password string
		kind     apperr.Kind
	}{
		{"unknown email", "nobody@example.com", "correct-horse", apperr.KindUnauthorized},
		{"wrong password", active.Email, "wrong", apperr.KindUnauthorized},
		{"deactivated account", inactive.Email, "correct-horse", apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SignIn(context.Background(), tt.email, tt.password); !apperr.Is(err, tt.kind) {
				t.Errorf("SignIn() error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	user := testUser(true)
	users := &fakeUsers{
		byEmail: map[string]*userrepo.User{user.Email: user},
		byID:    map[uuid.UUID]*userrepo.User{user.ID: user},
	}
	store := newFakeTokenStore()
	svc := newTestService(store, users)

	pair, err := svc.SignIn(context.Background(), user.Email, "correct-horse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	fresh, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if fresh.RefreshToken == pair.RefreshToken {
		t.Error("Refresh() did not rotate the refresh token")
	}

	// The old token is revoked and can no longer be used.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("Refresh() with revoked token error = %v, want unauthorized", err)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	user := testUser(true)
	users := &fakeUsers{byID: map[uuid.UUID]*userrepo.User{user.ID: user}}
	store := newFakeTokenStore()
	svc := newTestService(store, users)

	hash := token.HashSHA256("stale")
	store.stored[hash] = storedToken{userID: user.ID, expiresAt: time.Now().Add(-time.Minute)}

	if _, err := svc.Refresh(context.Background(), "stale"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("Refresh() with expired token error = %v, want unauthorized", err)
	}
	if len(store.revoked) == 0 {
		t.Error("expired refresh token was not revoked")
	}
}

func TestRefreshDeactivatedUser(t *testing.T) {
	user := testUser(false)
	users := &fakeUsers{byID: map[uuid.UUID]*userrepo.User{user.ID: user}}
	store := newFakeTokenStore()
	svc := newTestService(store, users)

	hash := token.HashSHA256("valid")
	store.stored[hash] = storedToken{userID: user.ID, expiresAt: time.Now().Add(time.Hour)}

	if _, err := svc.Refresh(context.Background(), "valid"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("Refresh() for deactivated user error = %v, want unauthorized", err)
	}
	if len(store.revoked) == 0 {
		t.Error("refresh token for deactivated user was not revoked")
	}
}

func TestSignOutRevokes(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTestService(store, &fakeUsers{})

	hash := token.HashSHA256("bye")
	store.stored[hash] = storedToken{userID: uuid.New(), expiresAt: time.Now().Add(time.Hour)}

	if err := svc.SignOut(context.Background(), "bye"); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if len(store.revoked) != 1 || store.revoked[0] != hash {
		t.Errorf("SignOut() revoked = %v, want [%s]", store.revoked, hash)
	}
}
