package valueobject

import "github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"

type JobStatus string

const (
	JobStatusPendingDeposit    JobStatus = "pending_deposit"
	JobStatusOpen              JobStatus = "open"
	JobStatusInProgress        JobStatus = "in_progress"
	JobStatusPendingCompletion JobStatus = "pending_completion"
	JobStatusCompleted         JobStatus = "completed"
	JobStatusCancelled         JobStatus = "cancelled"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPendingDeposit:    {JobStatusOpen, JobStatusCancelled},
	JobStatusOpen:              {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress:        {JobStatusPendingCompletion},
	JobStatusPendingCompletion: {JobStatusCompleted},
	JobStatusCompleted:         {},
	JobStatusCancelled:         {},
}

// CanTransitionTo проверяет переход по решётке статусов заказа.
// Отмена после найма не поддерживается: эскроу уже закреплён за исполнителем.
func (s JobStatus) CanTransitionTo(newStatus JobStatus) bool {
	for _, status := range jobTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// HasHiredFreelancer сообщает, должен ли у заказа быть назначен исполнитель.
func (s JobStatus) HasHiredFreelancer() bool {
	switch s {
	case JobStatusInProgress, JobStatusPendingCompletion, JobStatusCompleted:
		return true
	}
	return false
}

// IsFunded сообщает, списан ли бюджет заказа с баланса клиента.
func (s JobStatus) IsFunded() bool {
	return s != JobStatusPendingDeposit && s != JobStatusCancelled
}

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	// ApplicationStatusViewed зарезервирован, переходов в него нет.
	ApplicationStatusViewed   ApplicationStatus = "viewed"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// CanBeRejected: принятый отклик отклонить нельзя, повторное отклонение тоже запрещено.
func (s ApplicationStatus) CanBeRejected() bool {
	return s == ApplicationStatusSubmitted || s == ApplicationStatusViewed
}

func (s ApplicationStatus) CanBeAccepted() bool {
	return s == ApplicationStatusSubmitted || s == ApplicationStatusViewed
}

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeEarning    TransactionType = "earning"
	TransactionTypeRefund     TransactionType = "refund"
)

// IsCredit сообщает, увеличивает ли проведённая транзакция баланс.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeEarning, TransactionTypeRefund:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// CanTransitionTo: статус транзакции меняется только из pending.
func (s TransactionStatus) CanTransitionTo(newStatus TransactionStatus) bool {
	return s == TransactionStatusPending &&
		(newStatus == TransactionStatusCompleted || newStatus == TransactionStatusFailed)
}

type Role string

const (
	RoleUnset      Role = ""
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

func NewRole(role string) (Role, error) {
	r := Role(role)
	if r != RoleClient && r != RoleFreelancer {
		return "", apperror.New(apperror.ErrCodeValidation, "роль должна быть client или freelancer")
	}
	return r, nil
}

type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)
