package handler

import (
	"context"
	"database/sql"
	"time"

	"gacha-server/internal/domain/catalog"
	"gacha-server/internal/domain/cooldown"
	"gacha-server/internal/domain/grantsetting"
	"gacha-server/internal/domain/points"
	"gacha-server/internal/domain/transaction"

	"github.com/stretchr/testify/mock"
)

// MockBalanceRepository モックポイント残高リポジトリ
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) FindByUserID(ctx context.Context, userID string) (*points.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*points.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Create(ctx context.Context, balance *points.Balance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) Save(ctx context.Context, balance *points.Balance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) GrantCappedAll(ctx context.Context, amount int) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository モックトランザクションリポジトリ
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

// MockItemRepository モックカタログリポジトリ
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) BulkInsert(ctx context.Context, items []*catalog.Item) (int64, error) {
	args := m.Called(ctx, items)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) FindByCollection(ctx context.Context, collection string) ([]*catalog.Item, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) ListCollections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemRepository) CollectionExists(ctx context.Context, collection string) (bool, error) {
	args := m.Called(ctx, collection)
	return args.Bool(0), args.Error(1)
}

// MockOwnershipRepository モック所持レコードリポジトリ
type MockOwnershipRepository struct {
	mock.Mock
}

func (m *MockOwnershipRepository) AddIfAbsent(ctx context.Context, userID, collection, itemID string) (bool, error) {
	args := m.Called(ctx, userID, collection, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnershipRepository) FindItemIDs(ctx context.Context, userID, collection string) ([]string, error) {
	args := m.Called(ctx, userID, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOwnershipRepository) Contains(ctx context.Context, userID, collection, itemID string) (bool, error) {
	args := m.Called(ctx, userID, collection, itemID)
	return args.Bool(0), args.Error(1)
}

// MockSettingRepository モック付与量設定リポジトリ
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) Find(ctx context.Context, name string) (*grantsetting.Setting, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*grantsetting.Setting), args.Error(1)
}

func (m *MockSettingRepository) Save(ctx context.Context, setting *grantsetting.Setting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

// MockTransactionManager モックトランザクションマネージャー
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	// 実際のトランザクションは使わず、関数を直接実行
	if fn != nil {
		return fn(nil)
	}
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// stubCooldownStore 固定結果を返すクールダウンストア
type stubCooldownStore struct {
	result cooldown.Result
	err    error
}

func (s *stubCooldownStore) CheckAndStamp(ctx context.Context, userID string, now time.Time, duration time.Duration) (cooldown.Result, error) {
	return s.result, s.err
}

// stubSource 固定値を返す乱数源
type stubSource struct {
	value float64
}

func (s *stubSource) Float64() float64 {
	return s.value
}
