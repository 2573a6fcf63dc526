package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
)

// Job описывает заказ клиента. Бюджет удерживается с баланса клиента при открытии.
type Job struct {
	ID                uuid.UUID             `db:"id" json:"id"`
	ClientID          uuid.UUID             `db:"client_id" json:"client_id"`
	Title             string                `db:"title" json:"title"`
	Description       string                `db:"description" json:"description"`
	Budget            decimal.Decimal       `db:"budget" json:"budget"`
	Status            valueobject.JobStatus `db:"status" json:"status"`
	HiredFreelancerID *uuid.UUID            `db:"hired_freelancer_id" json:"hired_freelancer_id,omitempty"`
	CreatedAt         time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time             `db:"updated_at" json:"updated_at"`
	RequiredSkills    []Skill               `db:"-" json:"required_skills"`
}

// IsClient проверяет, что пользователь - автор заказа.
func (j *Job) IsClient(userID uuid.UUID) bool {
	return j.ClientID == userID
}

// IsHired проверяет, что пользователь - нанятый исполнитель.
func (j *Job) IsHired(userID uuid.UUID) bool {
	return j.Status.HasHiredFreelancer() && j.HiredFreelancerID != nil && *j.HiredFreelancerID == userID
}

// RequiredSkillIDs возвращает множество требуемых навыков.
func (j *Job) RequiredSkillIDs() []uuid.UUID {
	return SkillIDs(j.RequiredSkills)
}

// Application - отклик исполнителя на заказ. Пара (job, freelancer) уникальна.
type Application struct {
	ID           uuid.UUID                     `db:"id" json:"id"`
	JobID        uuid.UUID                     `db:"job_id" json:"job_id"`
	FreelancerID uuid.UUID                     `db:"freelancer_id" json:"freelancer_id"`
	Proposal     string                        `db:"proposal" json:"proposal"`
	Bid          decimal.Decimal               `db:"bid" json:"bid"`
	Status       valueobject.ApplicationStatus `db:"status" json:"status"`
	CreatedAt    time.Time                     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time                     `db:"updated_at" json:"updated_at"`
}

// HireResult - итог найма: обновлённый заказ, принятый и отклонённые отклики.
type HireResult struct {
	Job      *Job          `json:"job"`
	Accepted *Application  `json:"accepted"`
	Rejected []Application `json:"rejected"`
}

// CompletionResult - итог подтверждения завершения заказа.
type CompletionResult struct {
	Job        *Job            `json:"job"`
	Earning    *Transaction    `json:"earning"`
	Commission decimal.Decimal `json:"commission"`
}

// CancelResult - итог отмены заказа.
type CancelResult struct {
	Job      *Job          `json:"job"`
	Refund   *Transaction  `json:"refund,omitempty"`
	Rejected []Application `json:"rejected"`
}
