package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/goroutine"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository"
)

// memStore - площадка в памяти. Один мьютекс играет роль транзакции БД,
// поэтому параллельные операции сериализуются так же, как под блокировками строк.
type memStore struct {
	mu         sync.Mutex
	clock      time.Time
	users      map[uuid.UUID]*models.User
	userSkills map[uuid.UUID]map[uuid.UUID]bool
	skills     map[uuid.UUID]models.Skill
	jobs       map[uuid.UUID]*models.Job
	jobSkills  map[uuid.UUID][]uuid.UUID
	apps       map[uuid.UUID]*models.Application
	txs        []*models.Transaction
	revenue    []models.PlatformRevenue
	reviews    []*models.Review
}

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:      make(map[uuid.UUID]*models.User),
		userSkills: make(map[uuid.UUID]map[uuid.UUID]bool),
		skills:     make(map[uuid.UUID]models.Skill),
		jobs:       make(map[uuid.UUID]*models.Job),
		jobSkills:  make(map[uuid.UUID][]uuid.UUID),
		apps:       make(map[uuid.UUID]*models.Application),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(role valueobject.Role, balance string, skillIDs ...uuid.UUID) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	user := &models.User{
		ID:          uuid.New(),
		ExternalID:  uuid.NewString(),
		DisplayName: string(role),
		Role:        role,
		Status:      valueobject.UserStatusActive,
		Balance:     decimal.RequireFromString(balance),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.users[user.ID] = user
	m.userSkills[user.ID] = make(map[uuid.UUID]bool)
	for _, id := range skillIDs {
		m.userSkills[user.ID][id] = true
	}
	// стартовый баланс проводится подтверждённым пополнением
	if user.Balance.IsPositive() {
		m.post(user.ID, valueobject.TransactionTypeDeposit, user.Balance, valueobject.TransactionStatusCompleted, nil)
	}
	return user.ID
}

func (m *memStore) addSkill(name string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	skill := models.Skill{ID: uuid.New(), Name: name, CreatedAt: m.tick()}
	m.skills[skill.ID] = skill
	return skill.ID
}

func (m *memStore) ban(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].Status = valueobject.UserStatusBanned
}

func (m *memStore) balance(userID uuid.UUID) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].Balance
}

func (m *memStore) platformRevenue() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, r := range m.revenue {
		total = total.Add(r.Amount)
	}
	return total
}

func (m *memStore) transactionsOf(userID uuid.UUID) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Transaction
	for _, tx := range m.txs {
		if tx.UserID == userID {
			result = append(result, *tx)
		}
	}
	return result
}

// movementsOf возвращает транзакции пользователя без стартового пополнения.
func (m *memStore) movementsOf(userID uuid.UUID) []models.Transaction {
	txs := m.transactionsOf(userID)
	if len(txs) > 0 && txs[0].Type == valueobject.TransactionTypeDeposit && txs[0].Status == valueobject.TransactionStatusCompleted {
		return txs[1:]
	}
	return txs
}

// requireLedgerConsistent проверяет, что баланс каждого пользователя равен сумме его журнала.
func (m *memStore) requireLedgerConsistent(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, user := range m.users {
		sum := decimal.Zero
		for _, tx := range m.txs {
			if tx.UserID == id {
				sum = sum.Add(tx.SignedAmount())
			}
		}
		require.Truef(t, user.Balance.Equal(sum), "баланс %s не совпадает с журналом %s", user.Balance, sum)
		require.False(t, user.Balance.IsNegative())
	}
}

func (m *memStore) userCopy(id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	cp.Skills = nil
	for skillID := range m.userSkills[id] {
		cp.Skills = append(cp.Skills, m.skills[skillID])
	}
	return &cp, nil
}

func (m *memStore) jobCopy(job *models.Job) *models.Job {
	cp := *job
	if job.HiredFreelancerID != nil {
		hired := *job.HiredFreelancerID
		cp.HiredFreelancerID = &hired
	}
	cp.RequiredSkills = nil
	for _, id := range m.jobSkills[job.ID] {
		cp.RequiredSkills = append(cp.RequiredSkills, m.skills[id])
	}
	return &cp
}

func (m *memStore) post(userID uuid.UUID, txType valueobject.TransactionType, amount decimal.Decimal, status valueobject.TransactionStatus, jobID *uuid.UUID) *models.Transaction {
	now := m.tick()
	tx := &models.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Status:    status,
		JobID:     jobID,
		CreatedAt: now,
	}
	if status == valueobject.TransactionStatusCompleted {
		tx.CompletedAt = &now
	}
	m.txs = append(m.txs, tx)
	return tx
}

func (m *memStore) debit(userID uuid.UUID, amount decimal.Decimal) error {
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.Balance.LessThan(amount) {
		return &repository.InsufficientFundsError{Balance: user.Balance, Required: amount}
	}
	user.Balance = user.Balance.Sub(amount)
	return nil
}

func (m *memStore) credit(userID uuid.UUID, amount decimal.Decimal) {
	m.users[userID].Balance = m.users[userID].Balance.Add(amount)
}

func (m *memStore) findTx(id uuid.UUID) (*models.Transaction, error) {
	for _, tx := range m.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// memUsers

type memUsers struct{ *memStore }

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userCopy(id)
}

func (m memUsers) ListFreelancersBySkills(_ context.Context, skillIDs []uuid.UUID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.User
	for id, user := range m.users {
		if user.Role != valueobject.RoleFreelancer || user.IsBanned() {
			continue
		}
		for _, skillID := range skillIDs {
			if m.userSkills[id][skillID] {
				result = append(result, *user)
				break
			}
		}
	}
	return result, nil
}

func (m memUsers) ToggleSkill(_ context.Context, userID, skillID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return false, repository.ErrUserNotFound
	}
	if m.userSkills[userID][skillID] {
		delete(m.userSkills[userID], skillID)
		return false, nil
	}
	m.userSkills[userID][skillID] = true
	return true, nil
}

// memSkills

type memSkills struct{ *memStore }

func (m memSkills) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.Skill{}
	for _, id := range ids {
		if skill, ok := m.skills[id]; ok {
			result = append(result, skill)
		}
	}
	return result, nil
}

// memLedger

type memLedger struct{ *memStore }

func (m memLedger) GetBalance(_ context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return decimal.Zero, repository.ErrUserNotFound
	}
	return user.Balance, nil
}

func (m memLedger) GetTransaction(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, err := m.findTx(id)
	if err != nil {
		return nil, err
	}
	cp := *tx
	return &cp, nil
}

func (m memLedger) CreateDeposit(_ context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := m.post(userID, valueobject.TransactionTypeDeposit, amount, valueobject.TransactionStatusPending, nil)
	cp := *tx
	return &cp, nil
}

func (m memLedger) MarkDepositSent(_ context.Context, txID, userID uuid.UUID, receiptPath *string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, err := m.findTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, repository.ErrTransactionNotFound
	}
	if tx.Type != valueobject.TransactionTypeDeposit || tx.Status != valueobject.TransactionStatusPending {
		return nil, &repository.StateError{Entity: "transaction", Status: string(tx.Status)}
	}
	now := m.tick()
	tx.SentAt = &now
	if receiptPath != nil {
		tx.ReceiptPath = receiptPath
	}
	cp := *tx
	return &cp, nil
}

func (m memLedger) settle(txID uuid.UUID, txType valueobject.TransactionType, to valueobject.TransactionStatus, credit bool) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, err := m.findTx(txID)
	if err != nil {
		return nil, err
	}
	if tx.Type != txType {
		return nil, &repository.StateError{Entity: "transaction type", Status: string(tx.Type)}
	}
	if !tx.Status.CanTransitionTo(to) {
		return nil, &repository.StateError{Entity: "transaction", Status: string(tx.Status)}
	}
	tx.Status = to
	now := m.tick()
	tx.CompletedAt = &now
	if credit {
		m.credit(tx.UserID, tx.Amount)
	}
	cp := *tx
	return &cp, nil
}

func (m memLedger) ConfirmDeposit(_ context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return m.settle(txID, valueobject.TransactionTypeDeposit, valueobject.TransactionStatusCompleted, true)
}

func (m memLedger) RejectDeposit(_ context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return m.settle(txID, valueobject.TransactionTypeDeposit, valueobject.TransactionStatusFailed, false)
}

func (m memLedger) ConfirmWithdrawal(_ context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return m.settle(txID, valueobject.TransactionTypeWithdrawal, valueobject.TransactionStatusCompleted, false)
}

func (m memLedger) RejectWithdrawal(_ context.Context, txID uuid.UUID) (*models.Transaction, error) {
	return m.settle(txID, valueobject.TransactionTypeWithdrawal, valueobject.TransactionStatusFailed, true)
}

func (m memLedger) RequestWithdrawal(_ context.Context, userID uuid.UUID, amount decimal.Decimal, address string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.debit(userID, amount); err != nil {
		return nil, err
	}
	tx := m.post(userID, valueobject.TransactionTypeWithdrawal, amount, valueobject.TransactionStatusPending, nil)
	tx.ExternalAddress = &address
	cp := *tx
	return &cp, nil
}

func (m memLedger) ListTransactions(_ context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var own []models.Transaction
	for i := len(m.txs) - 1; i >= 0; i-- {
		if m.txs[i].UserID == userID {
			own = append(own, *m.txs[i])
		}
	}
	return paginate(own, limit, offset), len(own), nil
}

func (m memLedger) PlatformRevenueTotal(context.Context) (decimal.Decimal, error) {
	return m.platformRevenue(), nil
}

func (m memLedger) EarningsSummary(_ context.Context, userID uuid.UUID) (*models.EarningsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary := &models.EarningsSummary{UserID: userID, TotalEarned: decimal.Zero}
	for _, tx := range m.txs {
		if tx.UserID == userID && tx.Type == valueobject.TransactionTypeEarning {
			summary.TotalEarned = summary.TotalEarned.Add(tx.Amount)
			summary.EarningCount++
		}
	}
	return summary, nil
}

// memJobs

type memJobs struct{ *memStore }

func (m memJobs) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return m.jobCopy(job), nil
}

func (m memJobs) insert(job *models.Job, skillIDs []uuid.UUID, status valueobject.JobStatus) {
	now := m.tick()
	job.ID = uuid.New()
	job.Status = status
	job.CreatedAt = now
	job.UpdatedAt = now
	stored := *job
	stored.RequiredSkills = nil
	m.jobs[job.ID] = &stored
	m.jobSkills[job.ID] = append([]uuid.UUID(nil), skillIDs...)
}

func (m memJobs) CreateFunded(_ context.Context, job *models.Job, skillIDs []uuid.UUID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.debit(job.ClientID, job.Budget); err != nil {
		return nil, err
	}
	m.insert(job, skillIDs, valueobject.JobStatusOpen)
	jobID := job.ID
	tx := m.post(job.ClientID, valueobject.TransactionTypePayment, job.Budget, valueobject.TransactionStatusCompleted, &jobID)
	cp := *tx
	return &cp, nil
}

func (m memJobs) CreatePendingDeposit(_ context.Context, job *models.Job, skillIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(job, skillIDs, valueobject.JobStatusPendingDeposit)
	return nil
}

func (m memJobs) lock(jobID, clientID uuid.UUID) (*models.Job, error) {
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	if !job.IsClient(clientID) {
		return nil, repository.ErrNotOwner
	}
	return job, nil
}

func (m memJobs) setStatus(job *models.Job, to valueobject.JobStatus) error {
	if !job.Status.CanTransitionTo(to) {
		return &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	job.Status = to
	job.UpdatedAt = m.tick()
	return nil
}

func (m memJobs) Fund(_ context.Context, jobID, clientID uuid.UUID) (*models.Job, *models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := m.lock(jobID, clientID)
	if err != nil {
		return nil, nil, err
	}
	if job.Status != valueobject.JobStatusPendingDeposit {
		return nil, nil, &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	if err := m.debit(clientID, job.Budget); err != nil {
		return nil, nil, err
	}
	if err := m.setStatus(job, valueobject.JobStatusOpen); err != nil {
		return nil, nil, err
	}
	tx := m.post(clientID, valueobject.TransactionTypePayment, job.Budget, valueobject.TransactionStatusCompleted, &jobID)
	cp := *tx
	return m.jobCopy(job), &cp, nil
}

func (m memJobs) Hire(_ context.Context, applicationID, clientID uuid.UUID) (*models.HireResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[applicationID]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	job, err := m.lock(app.JobID, clientID)
	if err != nil {
		return nil, err
	}
	if job.Status != valueobject.JobStatusOpen {
		return nil, &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	if !app.Status.CanBeAccepted() {
		return nil, &repository.StateError{Entity: "application", Status: string(app.Status)}
	}
	if err := m.setStatus(job, valueobject.JobStatusInProgress); err != nil {
		return nil, err
	}
	hired := app.FreelancerID
	job.HiredFreelancerID = &hired
	app.Status = valueobject.ApplicationStatusAccepted

	result := &models.HireResult{Job: m.jobCopy(job), Rejected: []models.Application{}}
	accepted := *app
	result.Accepted = &accepted
	for _, other := range m.apps {
		if other.JobID == job.ID && other.ID != app.ID && other.Status.CanBeRejected() {
			other.Status = valueobject.ApplicationStatusRejected
			result.Rejected = append(result.Rejected, *other)
		}
	}
	return result, nil
}

func (m memJobs) MarkWorkComplete(_ context.Context, jobID, freelancerID uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	if !job.IsHired(freelancerID) {
		return nil, repository.ErrNotOwner
	}
	if job.Status != valueobject.JobStatusInProgress {
		return nil, &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	if err := m.setStatus(job, valueobject.JobStatusPendingCompletion); err != nil {
		return nil, err
	}
	return m.jobCopy(job), nil
}

func (m memJobs) ConfirmCompletion(_ context.Context, jobID, clientID uuid.UUID, rate decimal.Decimal) (*models.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := m.lock(jobID, clientID)
	if err != nil {
		return nil, err
	}
	if job.Status != valueobject.JobStatusPendingCompletion {
		return nil, &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	payout := valueobject.SplitPayout(job.Budget, rate)
	result := &models.CompletionResult{Commission: payout.Commission}
	if payout.Earning.IsPositive() {
		m.credit(*job.HiredFreelancerID, payout.Earning)
		tx := m.post(*job.HiredFreelancerID, valueobject.TransactionTypeEarning, payout.Earning, valueobject.TransactionStatusCompleted, &jobID)
		cp := *tx
		result.Earning = &cp
	}
	m.revenue = append(m.revenue, models.PlatformRevenue{ID: uuid.New(), JobID: jobID, Amount: payout.Commission, CreatedAt: m.tick()})
	if err := m.setStatus(job, valueobject.JobStatusCompleted); err != nil {
		return nil, err
	}
	result.Job = m.jobCopy(job)
	return result, nil
}

func (m memJobs) Cancel(_ context.Context, jobID, clientID uuid.UUID) (*models.CancelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, err := m.lock(jobID, clientID)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransitionTo(valueobject.JobStatusCancelled) {
		return nil, &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	result := &models.CancelResult{Rejected: []models.Application{}}
	if job.Status.IsFunded() {
		m.credit(clientID, job.Budget)
		tx := m.post(clientID, valueobject.TransactionTypeRefund, job.Budget, valueobject.TransactionStatusCompleted, &jobID)
		cp := *tx
		result.Refund = &cp
		for _, app := range m.apps {
			if app.JobID == jobID && app.Status.CanBeRejected() {
				app.Status = valueobject.ApplicationStatusRejected
				result.Rejected = append(result.Rejected, *app)
			}
		}
	}
	if err := m.setStatus(job, valueobject.JobStatusCancelled); err != nil {
		return nil, err
	}
	result.Job = m.jobCopy(job)
	return result, nil
}

func (m memJobs) list(match func(*models.Job) bool, limit, offset int) ([]models.Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Job
	for _, job := range m.jobs {
		if match(job) {
			result = append(result, *m.jobCopy(job))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})
	return paginate(result, limit, offset), len(result), nil
}

func (m memJobs) ListOpen(_ context.Context, limit, offset int) ([]models.Job, int, error) {
	return m.list(func(j *models.Job) bool { return j.Status == valueobject.JobStatusOpen }, limit, offset)
}

func (m memJobs) ListByClient(_ context.Context, clientID uuid.UUID, limit, offset int) ([]models.Job, int, error) {
	return m.list(func(j *models.Job) bool { return j.ClientID == clientID }, limit, offset)
}

func (m memJobs) ListByFreelancer(_ context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Job, int, error) {
	return m.list(func(j *models.Job) bool { return j.IsHired(freelancerID) }, limit, offset)
}

func (m memJobs) CountCompletedByFreelancer(_ context.Context, freelancerID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, job := range m.jobs {
		if job.IsHired(freelancerID) && job.Status == valueobject.JobStatusCompleted {
			count++
		}
	}
	return count, nil
}

// memApps

type memApps struct{ *memStore }

func (m memApps) Create(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[app.JobID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if job.Status != valueobject.JobStatusOpen {
		return &repository.StateError{Entity: "job", Status: string(job.Status)}
	}
	for _, existing := range m.apps {
		if existing.JobID == app.JobID && existing.FreelancerID == app.FreelancerID {
			return repository.ErrAlreadyApplied
		}
	}
	now := m.tick()
	app.ID = uuid.New()
	app.Status = valueobject.ApplicationStatusSubmitted
	app.CreatedAt = now
	app.UpdatedAt = now
	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m memApps) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (m memApps) Reject(_ context.Context, id, clientID uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	if !m.jobs[app.JobID].IsClient(clientID) {
		return nil, repository.ErrNotOwner
	}
	if !app.Status.CanBeRejected() {
		return nil, &repository.StateError{Entity: "application", Status: string(app.Status)}
	}
	app.Status = valueobject.ApplicationStatusRejected
	cp := *app
	return &cp, nil
}

func (m memApps) list(match func(*models.Application) bool, newestFirst bool, limit, offset int) ([]models.Application, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Application
	for _, app := range m.apps {
		if match(app) {
			result = append(result, *app)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if newestFirst {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return paginate(result, limit, offset), len(result), nil
}

func (m memApps) ListByJob(_ context.Context, jobID uuid.UUID, limit, offset int) ([]models.Application, int, error) {
	return m.list(func(a *models.Application) bool { return a.JobID == jobID }, false, limit, offset)
}

func (m memApps) ListByFreelancer(_ context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Application, int, error) {
	return m.list(func(a *models.Application) bool { return a.FreelancerID == freelancerID }, true, limit, offset)
}

// memReviews

type memReviews struct{ *memStore }

func (m memReviews) Create(_ context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.JobID == review.JobID && r.ReviewerID == review.ReviewerID && r.RevieweeID == review.RevieweeID {
			return repository.ErrReviewExists
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = m.tick()
	stored := *review
	m.reviews = append(m.reviews, &stored)
	return nil
}

func (m memReviews) ListByReviewee(_ context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].RevieweeID == revieweeID {
			result = append(result, *m.reviews[i])
		}
	}
	return paginate(result, limit, offset), nil
}

func (m memReviews) ListByJob(_ context.Context, jobID uuid.UUID) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Review
	for _, r := range m.reviews {
		if r.JobID == jobID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m memReviews) GetAverageRating(_ context.Context, userID uuid.UUID) (float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, count := 0, 0
	for _, r := range m.reviews {
		if r.RevieweeID == userID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// recordingNotifier запоминает отправленные события.
type recordingNotifier struct {
	mu      sync.Mutex
	sent    []sentEvent
	admin   []string
	failFor map[uuid.UUID]bool
}

type sentEvent struct {
	userID uuid.UUID
	event  string
	data   any
}

var errDeliveryFailed = errors.New("delivery failed")

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failFor: make(map[uuid.UUID]bool)}
}

func (n *recordingNotifier) Deliver(userID uuid.UUID, event string, data any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[userID] {
		return errDeliveryFailed
	}
	n.sent = append(n.sent, sentEvent{userID: userID, event: event, data: data})
	return nil
}

func (n *recordingNotifier) Notify(userID uuid.UUID, event string, data any) {
	_ = n.Deliver(userID, event, data)
}

func (n *recordingNotifier) NotifyAdmin(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admin = append(n.admin, event)
}

func (n *recordingNotifier) events(userID uuid.UUID) []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []sentEvent
	for _, e := range n.sent {
		if e.userID == userID {
			result = append(result, e)
		}
	}
	return result
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.sent {
		if e.event == event {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) adminEvents() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.admin...)
}

// marketplace собирает сервисы поверх memStore с синхронным запуском фоновых задач.
type marketplace struct {
	store        *memStore
	notifier     *recordingNotifier
	wallet       *WalletService
	jobs         *JobService
	applications *ApplicationService
	reviews      *ReviewService
	dispatcher   *MatchingDispatcher
}

func newMarketplace() *marketplace {
	store := newMemStore()
	notifier := newRecordingNotifier()
	users := memUsers{store}
	jobs := memJobs{store}

	dispatcher := NewMatchingDispatcher(users, notifier)
	reviews := NewReviewService(memReviews{store}, jobs, users, notifier)
	return &marketplace{
		store:        store,
		notifier:     notifier,
		wallet:       NewWalletService(memLedger{store}, users, notifier, &memReceipts{}, "TRC20:TXwalletAddressForTests01"),
		jobs:         NewJobService(jobs, users, memSkills{store}, dispatcher, reviews, notifier, valueobject.DefaultCommissionRate, goroutine.Inline),
		applications: NewApplicationService(memApps{store}, jobs, users, notifier, goroutine.Inline),
		reviews:      reviews,
		dispatcher:   dispatcher,
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
