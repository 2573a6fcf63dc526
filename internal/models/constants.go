package models

// Размеры страниц списков.
const (
	TransactionsPageSize = 5
	UsersPageSize        = 10
	SkillsPageSize       = 7
	JobsPageSize         = 10
	ApplicationsPageSize = 10
	ReportsPageSize      = 10
	NotificationsPerPage = 20
)

// События уведомлений.
const (
	EventJobMatched          = "job.matched"
	EventApplicationReceived = "application.received"
	EventApplicationAccepted = "application.accepted"
	EventApplicationRejected = "application.rejected"
	EventWorkSubmitted       = "job.work_submitted"
	EventJobCompleted        = "job.completed"
	EventJobCancelled        = "job.cancelled"
	EventReviewRequested     = "review.requested"
	EventDepositRequested    = "wallet.deposit_requested"
	EventDepositSent         = "wallet.deposit_sent"
	EventDepositConfirmed    = "wallet.deposit_confirmed"
	EventDepositRejected     = "wallet.deposit_rejected"
	EventWithdrawalRequested = "wallet.withdrawal_requested"
	EventWithdrawalConfirmed = "wallet.withdrawal_confirmed"
	EventWithdrawalRejected  = "wallet.withdrawal_rejected"
	EventUserBanned          = "user.banned"
	EventUserUnbanned        = "user.unbanned"
	EventUserReported        = "user.reported"
)

// TotalPages считает количество страниц при индексной пагинации.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Page - страница списка с индексной пагинацией.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}
