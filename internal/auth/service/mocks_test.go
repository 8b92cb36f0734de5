package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	authrepo "github.com/blogsphere/backend/internal/auth/repository"
	"github.com/blogsphere/backend/internal/auth/token"
	"github.com/blogsphere/backend/internal/common/clock"
	"github.com/blogsphere/backend/internal/common/logger"
	userdomain "github.com/blogsphere/backend/internal/user/domain"
	userrepo "github.com/blogsphere/backend/internal/user/repository"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdefghijkl"
	testRefreshSecret = "refresh-secret-0123456789abcdefghijk"
)

// mockUserRepo keeps users in memory unless a func field overrides the call.
type mockUserRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User

	existsByEmailFunc    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFunc func(ctx context.Context, username string) (bool, error)
	findByEmailFunc      func(ctx context.Context, email string) (userdomain.User, error)
	findByIDFunc         func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	createFunc           func(ctx context.Context, user userdomain.NewUser) (userdomain.User, error)

	createCalls int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[userdomain.ID]userdomain.User)}
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFunc != nil {
		return m.existsByEmailFunc(ctx, email)
	}
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFunc != nil {
		return m.existsByUsernameFunc(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.NewUser) (userdomain.User, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()

	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}

	created := userdomain.User{
		ID:           userdomain.ID(uuid.NewString()),
		Username:     user.Username,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	m.mu.Lock()
	m.users[created.ID] = created
	m.mu.Unlock()
	return created, nil
}

// memRefreshStore is an in-memory RefreshStore keyed by user id.
type memRefreshStore struct {
	mu      sync.Mutex
	records map[string]authdomain.RefreshRecord

	upsertFunc        func(ctx context.Context, record authdomain.RefreshRecord) error
	findByValueFunc   func(ctx context.Context, tokenHash string) (authdomain.RefreshRecord, error)
	deleteByValueFunc func(ctx context.Context, tokenHash string) error

	upsertCalls int
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{records: make(map[string]authdomain.RefreshRecord)}
}

func (m *memRefreshStore) Upsert(ctx context.Context, record authdomain.RefreshRecord) error {
	m.mu.Lock()
	m.upsertCalls++
	m.mu.Unlock()

	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.UserID] = record
	return nil
}

func (m *memRefreshStore) FindByValue(ctx context.Context, tokenHash string) (authdomain.RefreshRecord, error) {
	if m.findByValueFunc != nil {
		return m.findByValueFunc(ctx, tokenHash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.TokenHash == tokenHash {
			return r, nil
		}
	}
	return authdomain.RefreshRecord{}, authrepo.ErrRefreshTokenNotFound
}

func (m *memRefreshStore) DeleteByValue(ctx context.Context, tokenHash string) error {
	if m.deleteByValueFunc != nil {
		return m.deleteByValueFunc(ctx, tokenHash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, r := range m.records {
		if r.TokenHash == tokenHash {
			delete(m.records, userID)
		}
	}
	return nil
}

func (m *memRefreshStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *memRefreshStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memRefreshStore) get(userID string) (authdomain.RefreshRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[userID]
	return r, ok
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) (bool, error)
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) (bool, error) {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return strings.TrimPrefix(hash, "hashed:") == password, nil
}

type testEnv struct {
	svc    *SessionManager
	users  *mockUserRepo
	store  *memRefreshStore
	hasher *mockHasher
	codec  *token.Codec
	clock  *clock.MockClock
}

func setupSessionManager(t *testing.T) testEnv {
	t.Helper()

	mockClock := clock.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	users := newMockUserRepo()
	store := newMemRefreshStore()
	hasher := &mockHasher{}
	codec := token.NewCodec(testAccessSecret, testRefreshSecret, mockClock)

	svc := NewSessionManager(SessionManagerDeps{
		Users:        users,
		RefreshStore: store,
		Hasher:       hasher,
		Codec:        codec,
		Clock:        mockClock,
		Log:          logger.NewDiscard(),
	}, SessionManagerConfig{
		AccessTokenTTL:          30 * time.Minute,
		RefreshTokenTTL:         60 * time.Minute,
		CircuitBreakerThreshold: 3,
		CircuitBreakerTimeout:   time.Second,
		CircuitBreakerReset:     time.Minute,
	})

	return testEnv{
		svc:    svc,
		users:  users,
		store:  store,
		hasher: hasher,
		codec:  codec,
		clock:  mockClock,
	}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "alice_w",
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	}
}
