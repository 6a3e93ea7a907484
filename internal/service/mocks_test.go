package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) List(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepo) GetLeaderboard(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepo) ReplaceAll(ctx context.Context, users []entity.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepo) Version(ctx context.Context, versionKey string) (int64, error) {
	args := m.Called(ctx, versionKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) IncrVersion(ctx context.Context, versionKey string) (int64, error) {
	args := m.Called(ctx, versionKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey string, version int64) (bool, error) {
	args := m.Called(ctx, key, value, expiration, versionKey, version)
	return args.Bool(0), args.Error(1)
}

// MockClaimRepo реализует repository.ClaimRepository
type MockClaimRepo struct {
	mock.Mock
}

func (m *MockClaimRepo) ApplyClaim(ctx context.Context, userID uuid.UUID, points int64) (*entity.User, *entity.HistoryRecord, error) {
	args := m.Called(ctx, userID, points)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.User), args.Get(1).(*entity.HistoryRecord), args.Error(2)
}

// MockHistoryRepo реализует repository.HistoryRepository
type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) ListPage(ctx context.Context, limit, offset int) ([]entity.HistoryEntry, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.HistoryEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockHistoryRepo) ListAll(ctx context.Context) ([]entity.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepo) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher запоминает разосланные события
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// fixedPoints возвращает значения по кругу
type fixedPoints struct {
	values []int64
	i      int
}

func (f *fixedPoints) Next() int64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

// ============================================================================
// In-memory хранилище для проверки свойств сквозь несколько сервисов
// ============================================================================

type memoryStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*entity.User
	history []entity.HistoryRecord
	clock   time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[uuid.UUID]*entity.User),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) Create(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == user.Name {
			return apperrors.ErrConflict
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = s.tick()
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (s *memoryStore) sortedUsers(less func(a, b entity.User) bool) []entity.User {
	users := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return less(users[i], users[j]) })
	return users
}

func (s *memoryStore) List(ctx context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedUsers(func(a, b entity.User) bool { return a.Name < b.Name }), nil
}

func (s *memoryStore) GetLeaderboard(ctx context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedUsers(func(a, b entity.User) bool {
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}

func (s *memoryStore) ReplaceAll(ctx context.Context, users []entity.User) error {
	s.mu.Lock()
	s.users = make(map[uuid.UUID]*entity.User)
	s.history = nil
	s.mu.Unlock()
	for i := range users {
		u := users[i]
		if err := s.Create(ctx, &u); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) ApplyClaim(ctx context.Context, userID uuid.UUID, points int64) (*entity.User, *entity.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	u.TotalPoints += points
	record := entity.HistoryRecord{ID: uuid.New(), UserID: userID, PointsClaimed: points, Timestamp: s.tick()}
	s.history = append(s.history, record)
	userCopy := *u
	return &userCopy, &record, nil
}

func (s *memoryStore) entries() []entity.HistoryEntry {
	out := make([]entity.HistoryEntry, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		h := s.history[i]
		name := ""
		if u, ok := s.users[h.UserID]; ok {
			name = u.Name
		}
		out = append(out, entity.HistoryEntry{
			ID: h.ID, UserID: h.UserID, UserName: name, PointsClaimed: h.PointsClaimed, Timestamp: h.Timestamp,
		})
	}
	return out
}

func (s *memoryStore) ListPage(ctx context.Context, limit, offset int) ([]entity.HistoryEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.entries()
	if offset >= len(all) {
		return []entity.HistoryEntry{}, int64(len(all)), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

func (s *memoryStore) ListAll(ctx context.Context) ([]entity.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries(), nil
}

func (s *memoryStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.history))
	s.history = nil
	return n, nil
}

func (s *memoryStore) historySum(userID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, h := range s.history {
		if h.UserID == userID {
			sum += h.PointsClaimed
		}
	}
	return sum
}

// memoryCache - кеш в памяти с версиями ключей, ведет себя как CacheRepo поверх Redis
type memoryCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	versions map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte), versions: make(map[string]int64)}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *memoryCache) Version(ctx context.Context, versionKey string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[versionKey], nil
}

func (c *memoryCache) IncrVersion(ctx context.Context, versionKey string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[versionKey]++
	return c.versions[versionKey], nil
}

func (c *memoryCache) SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey string, version int64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[versionKey] != version {
		return false, nil
	}
	c.values[key] = data
	return true, nil
}

// pausingLeaderboardRepo останавливает первый GetLeaderboard после чтения данных,
// пока тест не закроет release
type pausingLeaderboardRepo struct {
	*memoryStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingLeaderboardRepo(store *memoryStore) *pausingLeaderboardRepo {
	return &pausingLeaderboardRepo{
		memoryStore: store,
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (r *pausingLeaderboardRepo) GetLeaderboard(ctx context.Context) ([]entity.User, error) {
	users, err := r.memoryStore.GetLeaderboard(ctx)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return users, err
}
