package service

import (
	"context"
	"fmt"
	"io"
	"maps"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// memStore is an in-memory repository.Store. InTx snapshots the state and
// restores it when fn fails, mirroring a database rollback.
type memStore struct {
	mu sync.Mutex

	users        map[uuid.UUID]models.User
	accounts     map[uuid.UUID]models.Account
	categories   map[uuid.UUID]models.Category
	transactions map[uuid.UUID]models.Transaction
	budgets      map[uuid.UUID]models.Budget
	order        map[uuid.UUID]int
	seq          int

	inTx   bool
	failOn map[string]error
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:        map[uuid.UUID]models.User{},
		accounts:     map[uuid.UUID]models.Account{},
		categories:   map[uuid.UUID]models.Category{},
		transactions: map[uuid.UUID]models.Transaction{},
		budgets:      map[uuid.UUID]models.Budget{},
		order:        map[uuid.UUID]int{},
		failOn:       map[string]error{},
	}
}

type memSnapshot struct {
	users        map[uuid.UUID]models.User
	accounts     map[uuid.UUID]models.Account
	categories   map[uuid.UUID]models.Category
	transactions map[uuid.UUID]models.Transaction
	budgets      map[uuid.UUID]models.Budget
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		users:        maps.Clone(m.users),
		accounts:     maps.Clone(m.accounts),
		categories:   maps.Clone(m.categories),
		transactions: maps.Clone(m.transactions),
		budgets:      maps.Clone(m.budgets),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users, m.accounts, m.categories = s.users, s.accounts, s.categories
	m.transactions, m.budgets = s.transactions, s.budgets
}

func (m *memStore) fail(op string) error {
	return m.failOn[op]
}

func (m *memStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	snap := m.snapshot()
	m.inTx = true
	err := fn(m)
	m.inTx = false
	if err != nil {
		m.restore(snap)
	}
	return err
}

func (m *memStore) stamp(id uuid.UUID) time.Time {
	m.seq++
	m.order[id] = m.seq
	return time.Date(2025, time.January, 1, 0, 0, m.seq, 0, time.UTC)
}

// users

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: users_email_key", models.ErrConflict)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = m.stamp(user.ID)
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListUsers"); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return m.order[users[i].ID] < m.order[users[j].ID] })
	return users, nil
}

// accounts

func (m *memStore) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Account{}
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetAccount(ctx context.Context, id, userID uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) CreateAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = m.stamp(account.ID)
	account.UpdatedAt = account.CreatedAt
	m.accounts[account.ID] = *account
	return nil
}

func (m *memStore) UpdateAccount(ctx context.Context, id, userID uuid.UUID, input models.AccountUpdateInput) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return nil, models.ErrNotFound
	}
	a.Name, a.Type = input.Name, input.Type
	if input.Balance != nil {
		a.Balance = *input.Balance
	}
	if input.Currency != "" {
		a.Currency = input.Currency
	}
	m.accounts[id] = a
	return &a, nil
}

func (m *memStore) DeleteAccount(ctx context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.accounts, id)
	for tid, t := range m.transactions {
		if t.AccountID == id {
			delete(m.transactions, tid)
		}
	}
	return nil
}

func (m *memStore) AdjustAccountBalance(ctx context.Context, id, userID uuid.UUID, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AdjustAccountBalance"); err != nil {
		return err
	}
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return models.ErrNotFound
	}
	a.Balance += delta
	m.accounts[id] = a
	return nil
}

// categories

func (m *memStore) ListCategories(ctx context.Context, userID uuid.UUID, typ *models.TransactionType) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Category{}
	for _, c := range m.categories {
		if c.UserID != userID || !c.IsActive || (typ != nil && c.Type != *typ) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateCategory(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.IsActive = true
	category.CreatedAt = m.stamp(category.ID)
	category.UpdatedAt = category.CreatedAt
	m.categories[category.ID] = *category
	return nil
}

func (m *memStore) LockCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	return m.GetCategory(ctx, id, userID)
}

func (m *memStore) CountCategoryTransactions(ctx context.Context, categoryID, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.transactions {
		if t.CategoryID == categoryID && t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[category.ID]
	if !ok || c.UserID != category.UserID {
		return models.ErrNotFound
	}
	category.IsActive = c.IsActive
	category.CreatedAt = c.CreatedAt
	m.categories[category.ID] = *category
	return nil
}

func (m *memStore) ArchiveCategory(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, models.ErrNotFound
	}
	c.IsActive = false
	m.categories[id] = c
	return &c, nil
}

// transactions

func (m *memStore) withRelations(t models.Transaction) models.TransactionWithRelations {
	out := models.TransactionWithRelations{Transaction: t}
	if c, ok := m.categories[t.CategoryID]; ok {
		name, color := c.Name, c.Color
		out.CategoryName, out.CategoryColor, out.CategoryIcon = &name, &color, c.Icon
	}
	a := m.accounts[t.AccountID]
	out.AccountName, out.Currency = a.Name, a.Currency
	return out
}

func (m *memStore) sortedTransactions(userID uuid.UUID) []models.Transaction {
	var list []models.Transaction
	for _, t := range m.transactions {
		if a, ok := m.accounts[t.AccountID]; t.UserID == userID && ok && a.UserID == userID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date.Time) {
			return list[i].Date.After(list[j].Date.Time)
		}
		return m.order[list[i].ID] > m.order[list[j].ID]
	})
	return list
}

func (m *memStore) ListTransactions(ctx context.Context, userID uuid.UUID, f models.TransactionFilter) ([]models.TransactionWithRelations, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TransactionWithRelations{}
	skipped := 0
	for _, t := range m.sortedTransactions(userID) {
		switch {
		case f.AccountID != nil && t.AccountID != *f.AccountID,
			f.CategoryID != nil && t.CategoryID != *f.CategoryID,
			f.Type != nil && t.Type != *f.Type,
			f.StartDate != nil && t.Date.Before(f.StartDate.Time),
			f.EndDate != nil && t.Date.After(f.EndDate.Time):
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
		out = append(out, m.withRelations(t))
	}
	return out, nil
}

func (m *memStore) GetTransaction(ctx context.Context, id, userID uuid.UUID) (*models.TransactionWithRelations, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	out := m.withRelations(t)
	return &out, nil
}

func (m *memStore) LockTransaction(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertTransaction"); err != nil {
		return err
	}
	if _, ok := m.accounts[t.AccountID]; !ok {
		return fmt.Errorf("%w: transactions_account_id_fkey", models.ErrNotFound)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = m.stamp(t.ID)
	t.UpdatedAt = t.CreatedAt
	m.transactions[t.ID] = *t
	return nil
}

func (m *memStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateTransaction"); err != nil {
		return err
	}
	old, ok := m.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return models.ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = old.UpdatedAt.Add(time.Second)
	m.transactions[t.ID] = *t
	return nil
}

func (m *memStore) DeleteTransaction(ctx context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteTransaction"); err != nil {
		return err
	}
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

// budgets

func (m *memStore) ListBudgets(ctx context.Context, userID uuid.UUID, month string) ([]models.BudgetWithCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.BudgetWithCategory{}
	for _, b := range m.budgets {
		if b.UserID == userID && b.Month == month {
			out = append(out, models.BudgetWithCategory{Budget: b, Category: m.categories[b.CategoryID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category.Name < out[j].Category.Name })
	return out, nil
}

func (m *memStore) findBudget(userID, categoryID uuid.UUID, month string) (models.Budget, bool) {
	for _, b := range m.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month == month {
			return b, true
		}
	}
	return models.Budget{}, false
}

func (m *memStore) UpsertBudget(ctx context.Context, budget *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.findBudget(budget.UserID, budget.CategoryID, budget.Month); ok {
		existing.Amount = budget.Amount
		m.budgets[existing.ID] = existing
		*budget = existing
		return nil
	}
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	budget.CreatedAt = m.stamp(budget.ID)
	budget.UpdatedAt = budget.CreatedAt
	m.budgets[budget.ID] = *budget
	return nil
}

func (m *memStore) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.budgets[budget.ID]
	if !ok || old.UserID != budget.UserID {
		return models.ErrNotFound
	}
	if other, ok := m.findBudget(budget.UserID, budget.CategoryID, budget.Month); ok && other.ID != budget.ID {
		return fmt.Errorf("%w: budgets_user_category_month_key", models.ErrConflict)
	}
	budget.CreatedAt = old.CreatedAt
	m.budgets[budget.ID] = *budget
	return nil
}

func (m *memStore) DeleteBudget(ctx context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.budgets, id)
	return nil
}

func (m *memStore) InsertBudgets(ctx context.Context, userID uuid.UUID, month string, budgets []models.Budget) ([]models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertBudgets"); err != nil {
		return nil, err
	}
	created := []models.Budget{}
	for _, b := range budgets {
		if _, exists := m.findBudget(userID, b.CategoryID, month); exists {
			continue
		}
		b.ID = uuid.New()
		b.UserID = userID
		b.Month = month
		b.CreatedAt = m.stamp(b.ID)
		b.UpdatedAt = b.CreatedAt
		m.budgets[b.ID] = b
		created = append(created, b)
	}
	return created, nil
}

// aggregates

func (m *memStore) inRange(userID uuid.UUID, from, to models.Date) []models.Transaction {
	var out []models.Transaction
	for _, t := range m.sortedTransactions(userID) {
		if !t.Date.Before(from.Time) && !t.Date.After(to.Time) {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) AccountTotals(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total, count int64
	for _, a := range m.accounts {
		if a.UserID == userID {
			total += a.Balance
			count++
		}
	}
	return total, count, nil
}

func (m *memStore) SumByType(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.TypeTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SumByType"); err != nil {
		return nil, err
	}
	sums := map[models.TransactionType]int64{}
	for _, t := range m.inRange(userID, from, to) {
		sums[t.Type] += t.Amount
	}
	var out []models.TypeTotal
	for typ, total := range sums {
		out = append(out, models.TypeTotal{Type: typ, Total: total})
	}
	return out, nil
}

func (m *memStore) SumByCategory(ctx context.Context, userID uuid.UUID, typ models.TransactionType, from, to models.Date) ([]models.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := map[uuid.UUID]*models.CategoryTotal{}
	for _, t := range m.inRange(userID, from, to) {
		c, ok := m.categories[t.CategoryID]
		if t.Type != typ || !ok {
			continue
		}
		ct, ok := byID[c.ID]
		if !ok {
			ct = &models.CategoryTotal{CategoryID: c.ID, CategoryName: c.Name, CategoryColor: c.Color, CategoryIcon: c.Icon}
			byID[c.ID] = ct
		}
		ct.Total += t.Amount
		ct.Count++
	}
	out := []models.CategoryTotal{}
	for _, ct := range byID {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func (m *memStore) SumByMonth(ctx context.Context, userID uuid.UUID, from, to models.Date) ([]models.MonthTypeTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type key struct {
		month string
		typ   models.TransactionType
	}
	sums := map[key]int64{}
	for _, t := range m.inRange(userID, from, to) {
		sums[key{models.MonthOf(t.Date.Time).String(), t.Type}] += t.Amount
	}
	var out []models.MonthTypeTotal
	for k, total := range sums {
		out = append(out, models.MonthTypeTotal{Month: k.month, Type: k.typ, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (m *memStore) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RecentTransaction{}
	for _, t := range m.sortedTransactions(userID) {
		if len(out) == limit {
			break
		}
		rel := m.withRelations(t)
		out = append(out, models.RecentTransaction{
			ID:            t.ID,
			Type:          t.Type,
			Amount:        t.Amount,
			Description:   t.Description,
			Date:          t.Date,
			CategoryName:  rel.CategoryName,
			CategoryColor: rel.CategoryColor,
			CategoryIcon:  rel.CategoryIcon,
			AccountName:   rel.AccountName,
		})
	}
	return out, nil
}

// test fixtures

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(ctx context.Context, e models.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// fixedNow is the clock of every service test: mid March 2025
var fixedNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(store, testLogger(), testConfig(), opts...), store
}

func (m *memStore) seedAccount(t *testing.T, userID uuid.UUID, name string, balance int64) models.Account {
	t.Helper()
	a := models.Account{UserID: userID, Name: name, Type: models.AccountTypeBank, Balance: balance, Currency: models.CurrencyIDR}
	if err := m.CreateAccount(context.Background(), &a); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

func (m *memStore) seedCategory(t *testing.T, userID uuid.UUID, name string, typ models.TransactionType) models.Category {
	t.Helper()
	c := models.Category{UserID: userID, Name: name, Type: typ, Color: models.DefaultCategoryColor}
	if err := m.CreateCategory(context.Background(), &c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func (m *memStore) balance(t *testing.T, accountID uuid.UUID) int64 {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok {
		t.Fatalf("account %s missing", accountID)
	}
	return a.Balance
}

func date(y int, mo time.Month, d int) models.Date {
	return models.NewDate(y, mo, d)
}
