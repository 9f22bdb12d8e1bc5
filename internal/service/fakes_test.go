package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"safe-return-server/config"
	"safe-return-server/internal/model"
	"safe-return-server/internal/security"
)

// memoryTokenStore : хранилище refresh токенов в памяти с той же семантикой, что у postgres
type memoryTokenStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.RefreshToken
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{rows: make(map[int64]model.RefreshToken)}
}

func (s *memoryTokenStore) insertLocked(token *model.RefreshToken) {
	s.nextID++
	token.ID = s.nextID
	token.CreatedAt = time.Now()
	s.rows[token.ID] = *token
}

func (s *memoryTokenStore) findLocked(tokenValue string) (int64, bool) {
	for id, row := range s.rows {
		if row.TokenValue == tokenValue {
			return id, true
		}
	}
	return 0, false
}

func (s *memoryTokenStore) Save(_ context.Context, token *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(token)
	return nil
}

func (s *memoryTokenStore) Exists(_ context.Context, tokenValue string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.findLocked(tokenValue)
	return ok, nil
}

func (s *memoryTokenStore) Rotate(_ context.Context, oldTokenValue string, next *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.findLocked(oldTokenValue)
	if !ok {
		return model.ErrNotFound
	}
	delete(s.rows, id)
	s.insertLocked(next)
	return nil
}

func (s *memoryTokenStore) DeleteByValue(_ context.Context, tokenValue string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.findLocked(tokenValue)
	if ok {
		delete(s.rows, id)
	}
	return ok, nil
}

func (s *memoryTokenStore) ListAfter(_ context.Context, afterID int64, limit int) ([]model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.RefreshToken
	for id, row := range s.rows {
		if id > afterID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryTokenStore) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.rows[id]; ok {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *memoryTokenStore) countFor(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.OwnerIdentifier == owner {
			n++
		}
	}
	return n
}

// testClock : часы, которые двигает тест
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

func newTestJWT(t *testing.T, clock *testClock) *security.JWTService {
	t.Helper()
	svc, err := security.NewJWTService(&config.JWTConfig{
		SecretKey:       "service-test-secret",
		AccessTokenTTL:  "30m",
		RefreshTokenTTL: "336h",
		Issuer:          "safe-return",
	})
	require.NoError(t, err)
	return svc.WithClock(clock.Now)
}

type MockAccountLookup struct{ mock.Mock }

func (m *MockAccountLookup) LookupByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

type MockPasswordVerifier struct{ mock.Mock }

func (m *MockPasswordVerifier) Verify(plain, hashed string) bool {
	return m.Called(plain, hashed).Bool(0)
}

type MockRefreshTokenRepository struct{ mock.Mock }

func (m *MockRefreshTokenRepository) Save(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) Exists(ctx context.Context, tokenValue string) (bool, error) {
	args := m.Called(ctx, tokenValue)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, oldTokenValue string, next *model.RefreshToken) error {
	return m.Called(ctx, oldTokenValue, next).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByValue(ctx context.Context, tokenValue string) (bool, error) {
	args := m.Called(ctx, tokenValue)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]model.RefreshToken, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockMemberRepository struct{ mock.Mock }

func (m *MockMemberRepository) LookupByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockMemberRepository) CreateMember(ctx context.Context, member *model.Member) (*model.Member, error) {
	args := m.Called(ctx, member)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id int64) (*model.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) UpdateProfileImageKey(ctx context.Context, id int64, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockMemberRepository) ListMembers(ctx context.Context, cursor string, limit int) ([]*model.Member, string, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]*model.Member), args.String(1), args.Error(2)
}

type MockProfileCache struct{ mock.Mock }

func (m *MockProfileCache) SetMember(ctx context.Context, member *model.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockProfileCache) GetMember(ctx context.Context, accountID int64) (*model.Member, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockProfileCache) DeleteMember(ctx context.Context, accountID int64) error {
	return m.Called(ctx, accountID).Error(0)
}

type MockS3Storage struct{ mock.Mock }

func (m *MockS3Storage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
