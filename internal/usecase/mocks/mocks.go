// Package mocks provides in-memory implementations of the usecase interfaces.
// Repositories store copies of the values they receive, and a MockTransaction
// that is rolled back restores every participating repository.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

// ErrTxDone is returned when committing a finished transaction.
var ErrTxDone = errors.New("mock transaction already finished")

// snapshotter is implemented by repositories that take part in rollbacks.
type snapshotter interface {
	snapshot() (restore func())
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	FindByOwnerForUpdateFunc func(ctx context.Context, tx usecase.Transaction, userID string, category domain.AccountCategory, currency string) (*domain.Account, error)
	NumberExistsFunc         func(ctx context.Context, tx usecase.Transaction, number string) (bool, error)
	UpdateBalanceFunc        func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc                 func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]domain.Account),
	}
}

func (m *MockAccountRepository) snapshot() func() {
	m.mu.RLock()
	saved := make(map[string]domain.Account, len(m.accounts))
	for k, v := range m.accounts {
		saved[k] = v
	}
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		m.accounts = saved
		m.mu.Unlock()
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.Number == account.Number {
			return fmt.Errorf("duplicate account number %s", account.Number)
		}
		if acc.UserID == account.UserID && acc.Category == account.Category && acc.Currency == account.Currency {
			return fmt.Errorf("duplicate %s %s account for %s", account.Category, account.Currency, account.UserID)
		}
	}
	m.accounts[account.ID] = *account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return &acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Number == number {
			return &acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) NumberExists(ctx context.Context, tx usecase.Transaction, number string) (bool, error) {
	if m.NumberExistsFunc != nil {
		return m.NumberExistsFunc(ctx, tx, number)
	}
	_, err := m.GetByNumber(ctx, number)
	return err == nil, nil
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, &acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) FindByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, userID string, category domain.AccountCategory, currency string) (*domain.Account, error) {
	if m.FindByOwnerForUpdateFunc != nil {
		return m.FindByOwnerForUpdateFunc(ctx, tx, userID, category, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.UserID == userID && acc.Category == category && acc.Currency == currency {
			return &acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) ListByUser(_ context.Context, userID string) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.sorted() {
		if acc.UserID == userID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return page(m.sorted(), limit, offset), nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.UpdatedAt = updatedAt
	m.accounts[id] = acc
	return nil
}

func (m *MockAccountRepository) SetActive(_ context.Context, id string, active bool, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Active = active
	acc.UpdatedAt = updatedAt
	m.accounts[id] = acc
	return nil
}

// Count returns the number of stored accounts.
func (m *MockAccountRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

func (m *MockAccountRepository) sorted() []*domain.Account {
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		acc := acc
		accounts = append(accounts, &acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[domain.BalanceKey]domain.Balance

	GetOrCreateForUpdateFunc func(ctx context.Context, tx usecase.Transaction, key domain.BalanceKey, newID string, now time.Time) (*domain.Balance, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error
	SumAvailableFunc         func(ctx context.Context, accountID, currency string) (decimal.Decimal, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[domain.BalanceKey]domain.Balance),
	}
}

func (m *MockBalanceRepository) snapshot() func() {
	m.mu.RLock()
	saved := make(map[domain.BalanceKey]domain.Balance, len(m.balances))
	for k, v := range m.balances {
		saved[k] = v
	}
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		m.balances = saved
		m.mu.Unlock()
	}
}

// Put stores a balance directly.
func (m *MockBalanceRepository) Put(balance *domain.Balance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balance.Key()] = *balance
}

func (m *MockBalanceRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, key domain.BalanceKey, newID string, now time.Time) (*domain.Balance, error) {
	if m.GetOrCreateForUpdateFunc != nil {
		return m.GetOrCreateForUpdateFunc(ctx, tx, key, newID, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[key]
	if !ok {
		b = domain.Balance{
			ID:         newID,
			AccountID:  key.AccountID,
			WalletType: key.Wallet,
			Currency:   key.Currency,
			Kind:       key.Kind,
			Amount:     decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		m.balances[key] = b
	}
	return &b, nil
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, _ usecase.Transaction, key domain.BalanceKey) (*domain.Balance, error) {
	return m.Get(ctx, key)
}

func (m *MockBalanceRepository) Get(_ context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.balances[key]; ok {
		return &b, nil
	}
	return nil, domain.ErrBalanceRecordMissing
}

func (m *MockBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[balance.Key()]; !ok {
		return domain.ErrBalanceRecordMissing
	}
	m.balances[balance.Key()] = *balance
	return nil
}

func (m *MockBalanceRepository) ListByAccount(_ context.Context, accountID string) ([]*domain.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balances []*domain.Balance
	for _, b := range m.balances {
		if b.AccountID == accountID {
			b := b
			balances = append(balances, &b)
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Key().String() < balances[j].Key().String() })
	return balances, nil
}

func (m *MockBalanceRepository) SumAvailable(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	if m.SumAvailableFunc != nil {
		return m.SumAvailableFunc(ctx, accountID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, b := range m.balances {
		if b.AccountID == accountID && b.Currency == currency && b.Kind == domain.BalanceKindAvailable {
			sum = sum.Add(b.Amount)
		}
	}
	return sum, nil
}

// Count returns the number of stored balances.
func (m *MockBalanceRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.balances)
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	records []domain.Transaction

	CreateFunc func(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) snapshot() func() {
	m.mu.RLock()
	saved := append([]domain.Transaction(nil), m.records...)
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		m.records = saved
		m.mu.Unlock()
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.Reference == record.Reference {
			return fmt.Errorf("duplicate reference %s", record.Reference)
		}
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *MockTransactionRepository) GetByReference(_ context.Context, reference string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.Reference == reference {
			return &r, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(_ context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.Transaction
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.AccountID != "" && !references(r, filter.AccountID) {
			continue
		}
		records = append(records, &r)
	}
	return page(records, filter.Limit, filter.Offset), nil
}

// Count returns the number of stored transaction records.
func (m *MockTransactionRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func references(r domain.Transaction, accountID string) bool {
	return (r.FromAccountID != nil && *r.FromAccountID == accountID) ||
		(r.ToAccountID != nil && *r.ToAccountID == accountID)
}

// MockExchangeRateRepository is a mock implementation of ExchangeRateRepository.
type MockExchangeRateRepository struct {
	mu    sync.RWMutex
	rates map[[2]string]domain.ExchangeRate

	GetActiveFunc func(ctx context.Context, from, to string) (*domain.ExchangeRate, error)
	GetActiveHits int
}

func NewMockExchangeRateRepository() *MockExchangeRateRepository {
	return &MockExchangeRateRepository{
		rates: make(map[[2]string]domain.ExchangeRate),
	}
}

func (m *MockExchangeRateRepository) Upsert(_ context.Context, rate *domain.ExchangeRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{rate.FromCurrency, rate.ToCurrency}
	if existing, ok := m.rates[key]; ok {
		rate.ID = existing.ID
		rate.CreatedAt = existing.CreatedAt
	}
	m.rates[key] = *rate
	return nil
}

func (m *MockExchangeRateRepository) GetActive(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetActiveHits++
	if r, ok := m.rates[[2]string{from, to}]; ok && r.Active {
		return &r, nil
	}
	return nil, domain.ErrRateNotFound
}

func (m *MockExchangeRateRepository) List(_ context.Context, activeOnly bool) ([]*domain.ExchangeRate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rates []*domain.ExchangeRate
	for _, r := range m.rates {
		if activeOnly && !r.Active {
			continue
		}
		r := r
		rates = append(rates, &r)
	}
	sort.Slice(rates, func(i, j int) bool {
		return rates[i].FromCurrency+rates[i].ToCurrency < rates[j].FromCurrency+rates[j].ToCurrency
	})
	return rates, nil
}

func (m *MockExchangeRateRepository) SetActive(_ context.Context, from, to string, active bool, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{from, to}
	r, ok := m.rates[key]
	if !ok {
		return domain.ErrRateNotFound
	}
	r.Active = active
	r.UpdatedAt = updatedAt
	m.rates[key] = r
	return nil
}

// Count returns the number of stored rates.
func (m *MockExchangeRateRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rates)
}

// MockRateCache is a mock implementation of RateCache.
type MockRateCache struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal

	GetFunc func(ctx context.Context, from, to string) (decimal.Decimal, bool, error)
}

func NewMockRateCache() *MockRateCache {
	return &MockRateCache{
		rates: make(map[string]decimal.Decimal),
	}
}

func (m *MockRateCache) Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rate, ok := m.rates[from+"/"+to]
	return rate, ok, nil
}

func (m *MockRateCache) Set(_ context.Context, from, to string, rate decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[from+"/"+to] = rate
	return nil
}

func (m *MockRateCache) Invalidate(_ context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rates, from+"/"+to)
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
// Transactions are serialized; rolling back restores the participants to
// their state at Begin.
type MockTransactionManager struct {
	mu           sync.Mutex
	statsMu      sync.Mutex
	participants []snapshotter

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	begins    int
	commits   int
	rollbacks int
}

func NewMockTransactionManager(participants ...snapshotter) *MockTransactionManager {
	return &MockTransactionManager{participants: participants}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	m.mu.Lock()

	restores := make([]func(), 0, len(m.participants))
	for _, p := range m.participants {
		restores = append(restores, p.snapshot())
	}

	m.count(&m.begins)

	return &MockTransaction{manager: m, restores: restores}, nil
}

// Stats returns how many transactions were begun, committed and rolled back.
func (m *MockTransactionManager) Stats() (begins, commits, rollbacks int) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.begins, m.commits, m.rollbacks
}

func (m *MockTransactionManager) count(n *int) {
	m.statsMu.Lock()
	*n++
	m.statsMu.Unlock()
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	manager  *MockTransactionManager
	restores []func()
	done     bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.done {
		return ErrTxDone
	}
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.finish()
	if m.manager != nil {
		m.manager.count(&m.manager.commits)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.done {
		return nil
	}
	if m.RollbackFunc != nil {
		if err := m.RollbackFunc(ctx); err != nil {
			return err
		}
	}
	for i := len(m.restores) - 1; i >= 0; i-- {
		m.restores[i]()
	}
	m.finish()
	if m.manager != nil {
		m.manager.count(&m.manager.rollbacks)
	}
	return nil
}

func (m *MockTransaction) finish() {
	m.done = true
	if m.manager != nil {
		m.manager.mu.Unlock()
	}
}

// MockRetrier is a mock implementation of Retrier.
type MockRetrier struct {
	mu       sync.Mutex
	attempts int

	// MaxAttempts re-runs the operation while it fails with a retryable error.
	MaxAttempts int
	Retryable   func(error) bool
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{MaxAttempts: 1}
}

func (m *MockRetrier) Retry(_ context.Context, operation func() error) error {
	var err error
	for i := 0; i < max(m.MaxAttempts, 1); i++ {
		m.mu.Lock()
		m.attempts++
		m.mu.Unlock()

		err = operation()
		if err == nil || m.Retryable == nil || !m.Retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageConflict, err)
}

// Attempts returns how many times operations were run.
func (m *MockRetrier) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockReferenceGenerator is a mock implementation of ReferenceGenerator.
type MockReferenceGenerator struct {
	AccountNumberFunc        func(category domain.AccountCategory) string
	TransactionReferenceFunc func() string

	mu       sync.Mutex
	accounts int
	refs     int
}

func NewMockReferenceGenerator() *MockReferenceGenerator {
	return &MockReferenceGenerator{}
}

func (m *MockReferenceGenerator) AccountNumber(category domain.AccountCategory) string {
	if m.AccountNumberFunc != nil {
		return m.AccountNumberFunc(category)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts++
	return fmt.Sprintf("%s%012d", category.NumberPrefix(), m.accounts)
}

func (m *MockReferenceGenerator) TransactionReference() string {
	if m.TransactionReferenceFunc != nil {
		return m.TransactionReferenceFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs++
	return fmt.Sprintf("TXN-%06d", m.refs)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Value returns the stored value for key.
func (m *MockIdempotencyStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// MockMetrics is a mock implementation of MetricsRecorder.
type MockMetrics struct {
	mu         sync.Mutex
	Operations map[string]int
	Fallbacks  int
	Mismatches int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Operations: make(map[string]int)}
}

func (m *MockMetrics) ObserveOperation(operation, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[operation+":"+status]++
}

func (m *MockMetrics) RateFallback(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks++
}

func (m *MockMetrics) ReconciliationMismatches(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mismatches = count
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
