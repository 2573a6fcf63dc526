package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository/common"
)

const jobColumns = `id, client_id, title, description, budget, status, hired_freelancer_id, created_at, updated_at`

// JobRepository отвечает за заказы, их навыки и денежные переходы жизненного цикла.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository создаёт новый экземпляр.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetByID возвращает заказ вместе с требуемыми навыками.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := common.GetByID[models.Job](ctx, r.db, "jobs", id, ErrJobNotFound)
	if err != nil {
		return nil, err
	}
	if err := r.attachSkills(ctx, r.db, []*models.Job{job}); err != nil {
		return nil, err
	}
	return job, nil
}

// CreateFunded публикует заказ сразу в статусе open, удерживая бюджет с баланса клиента.
// Проверка баланса, списание, запись payment и вставка заказа - одна транзакция.
func (r *JobRepository) CreateFunded(ctx context.Context, job *models.Job, skillIDs []uuid.UUID) (*models.Transaction, error) {
	var payment *models.Transaction
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.insert(ctx, tx, job, valueobject.JobStatusOpen, skillIDs); err != nil {
			return err
		}
		var err error
		payment, err = recordPayment(ctx, tx, job.ClientID, job.Budget, job.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CreatePendingDeposit сохраняет заказ без удержания средств, до пополнения баланса.
func (r *JobRepository) CreatePendingDeposit(ctx context.Context, job *models.Job, skillIDs []uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return r.insert(ctx, tx, job, valueobject.JobStatusPendingDeposit, skillIDs)
	})
}

func (r *JobRepository) insert(ctx context.Context, tx *sqlx.Tx, job *models.Job, status valueobject.JobStatus, skillIDs []uuid.UUID) error {
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO jobs (client_id, title, description, budget, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at, updated_at
	`, job.ClientID, job.Title, job.Description, job.Budget, status).
		Scan(&job.ID, &job.Status, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("job repository: insert %w", err)
	}

	if len(skillIDs) == 0 {
		return nil
	}
	inserter := common.NewBatchInserter(tx, "INSERT INTO job_skills (job_id, skill_id)", 2, 100).
		OnConflict("ON CONFLICT DO NOTHING")
	for _, skillID := range skillIDs {
		if err := inserter.Add(ctx, job.ID, skillID); err != nil {
			return err
		}
	}
	return inserter.Flush(ctx)
}

// Fund удерживает бюджет ожидающего пополнения заказа и открывает его.
// Заказ возвращается вместе с требуемыми навыками.
func (r *JobRepository) Fund(ctx context.Context, jobID, clientID uuid.UUID) (*models.Job, *models.Transaction, error) {
	var (
		job     *models.Job
		payment *models.Transaction
	)
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		job, err = lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsClient(clientID) {
			return ErrNotOwner
		}
		if job.Status != valueobject.JobStatusPendingDeposit {
			return invalidState("job", job.Status)
		}

		payment, err = recordPayment(ctx, tx, clientID, job.Budget, job.ID)
		if err != nil {
			return err
		}
		if err := setJobStatus(ctx, tx, job, valueobject.JobStatusOpen); err != nil {
			return err
		}
		return r.attachSkills(ctx, tx, []*models.Job{job})
	})
	if err != nil {
		return nil, nil, err
	}
	return job, payment, nil
}

// Hire принимает отклик: заказ переходит в in_progress, остальные
// незакрытые отклики отклоняются. Заказ блокируется раньше отклика, поэтому
// из двух параллельных наймов на один заказ проходит ровно один.
func (r *JobRepository) Hire(ctx context.Context, applicationID, clientID uuid.UUID) (*models.HireResult, error) {
	result := &models.HireResult{}
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var jobID uuid.UUID
		if err := tx.GetContext(ctx, &jobID, `SELECT job_id FROM applications WHERE id = $1`, applicationID); err != nil {
			return notFoundOr(err, ErrApplicationNotFound, "job repository: hire lookup")
		}

		job, err := lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsClient(clientID) {
			return ErrNotOwner
		}
		if job.Status != valueobject.JobStatusOpen {
			return invalidState("job", job.Status)
		}

		app, err := common.LockByID[models.Application](ctx, tx, "applications", applicationID, ErrApplicationNotFound)
		if err != nil {
			return err
		}
		if !app.Status.CanBeAccepted() {
			return invalidState("application", app.Status)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'in_progress', hired_freelancer_id = $2, updated_at = NOW() WHERE id = $1
		`, job.ID, app.FreelancerID); err != nil {
			return fmt.Errorf("job repository: hire %w", err)
		}
		job.Status = valueobject.JobStatusInProgress
		job.HiredFreelancerID = &app.FreelancerID

		if err := tx.GetContext(ctx, app, `
			UPDATE applications SET status = 'accepted', updated_at = NOW() WHERE id = $1
			RETURNING `+applicationColumns, app.ID); err != nil {
			return fmt.Errorf("job repository: accept application %w", err)
		}

		rejected := []models.Application{}
		if err := tx.SelectContext(ctx, &rejected, `
			UPDATE applications SET status = 'rejected', updated_at = NOW()
			WHERE job_id = $1 AND id <> $2 AND status IN ('submitted', 'viewed')
			RETURNING `+applicationColumns, job.ID, app.ID); err != nil {
			return fmt.Errorf("job repository: reject siblings %w", err)
		}

		result.Job = job
		result.Accepted = app
		result.Rejected = rejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkWorkComplete фиксирует сдачу работы нанятым исполнителем.
func (r *JobRepository) MarkWorkComplete(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Job, error) {
	var job *models.Job
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		job, err = lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsHired(freelancerID) {
			return ErrNotOwner
		}
		if job.Status != valueobject.JobStatusInProgress {
			return invalidState("job", job.Status)
		}
		return setJobStatus(ctx, tx, job, valueobject.JobStatusPendingCompletion)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ConfirmCompletion завершает заказ: исполнитель получает бюджет за вычетом комиссии,
// комиссия записывается в доход платформы. Всё или ничего.
func (r *JobRepository) ConfirmCompletion(ctx context.Context, jobID, clientID uuid.UUID, commissionRate decimal.Decimal) (*models.CompletionResult, error) {
	result := &models.CompletionResult{}
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		job, err := lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsClient(clientID) {
			return ErrNotOwner
		}
		if job.Status != valueobject.JobStatusPendingCompletion {
			return invalidState("job", job.Status)
		}
		if job.HiredFreelancerID == nil {
			return invalidState("job", job.Status)
		}

		payout := valueobject.SplitPayout(job.Budget, commissionRate)
		if payout.Earning.IsPositive() {
			result.Earning, err = recordEarning(ctx, tx, *job.HiredFreelancerID, payout.Earning, job.ID)
			if err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO platform_revenue (job_id, amount) VALUES ($1, $2)
		`, job.ID, payout.Commission); err != nil {
			return fmt.Errorf("job repository: platform revenue %w", err)
		}
		if err := setJobStatus(ctx, tx, job, valueobject.JobStatusCompleted); err != nil {
			return err
		}

		result.Job = job
		result.Commission = payout.Commission
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel отменяет заказ до найма. Открытый заказ возвращает бюджет клиенту,
// поданные отклики отклоняются.
func (r *JobRepository) Cancel(ctx context.Context, jobID, clientID uuid.UUID) (*models.CancelResult, error) {
	result := &models.CancelResult{Rejected: []models.Application{}}
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		job, err := lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !job.IsClient(clientID) {
			return ErrNotOwner
		}
		if !job.Status.CanTransitionTo(valueobject.JobStatusCancelled) {
			return invalidState("job", job.Status)
		}

		if job.Status.IsFunded() {
			result.Refund, err = recordRefund(ctx, tx, clientID, job.Budget, job.ID)
			if err != nil {
				return err
			}
			if err := tx.SelectContext(ctx, &result.Rejected, `
				UPDATE applications SET status = 'rejected', updated_at = NOW()
				WHERE job_id = $1 AND status IN ('submitted', 'viewed')
				RETURNING `+applicationColumns, job.ID); err != nil {
				return fmt.Errorf("job repository: reject on cancel %w", err)
			}
		}

		if err := setJobStatus(ctx, tx, job, valueobject.JobStatusCancelled); err != nil {
			return err
		}
		result.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListOpen возвращает открытые заказы, новые сверху.
func (r *JobRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Job, int, error) {
	return r.list(ctx, `status = 'open'`, nil, limit, offset)
}

// ListByClient возвращает заказы клиента.
func (r *JobRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Job, int, error) {
	return r.list(ctx, `client_id = $1`, clientID, limit, offset)
}

// ListByFreelancer возвращает заказы, на которые нанят исполнитель.
func (r *JobRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Job, int, error) {
	return r.list(ctx, `hired_freelancer_id = $1`, freelancerID, limit, offset)
}

func (r *JobRepository) list(ctx context.Context, where string, arg interface{}, limit, offset int) ([]models.Job, int, error) {
	var (
		args  []interface{}
		total int
	)
	if arg != nil {
		args = append(args, arg)
	}
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("job repository: count %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s FROM jobs WHERE %s
		ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d
	`, jobColumns, where, n+1, n+2)
	jobs := []models.Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("job repository: list %w", err)
	}

	ptrs := make([]*models.Job, len(jobs))
	for i := range jobs {
		ptrs[i] = &jobs[i]
	}
	if err := r.attachSkills(ctx, r.db, ptrs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// CountCompletedByFreelancer считает завершённые заказы исполнителя.
func (r *JobRepository) CountCompletedByFreelancer(ctx context.Context, freelancerID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM jobs WHERE hired_freelancer_id = $1 AND status = 'completed'
	`, freelancerID)
	if err != nil {
		return 0, fmt.Errorf("job repository: count completed %w", err)
	}
	return count, nil
}

type jobSkillRow struct {
	JobID uuid.UUID `db:"job_id"`
	models.Skill
}

// attachSkills загружает навыки для набора заказов одним запросом.
func (r *JobRepository) attachSkills(ctx context.Context, q common.Queryer, jobs []*models.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(jobs))
	byID := make(map[uuid.UUID]*models.Job, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
		byID[job.ID] = job
		job.RequiredSkills = []models.Skill{}
	}

	var rows []jobSkillRow
	err := q.SelectContext(ctx, &rows, `
		SELECT js.job_id, s.id, s.name, s.category, s.created_at
		FROM job_skills js
		JOIN skills s ON s.id = js.skill_id
		WHERE js.job_id = ANY($1::uuid[])
		ORDER BY s.name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("job repository: load skills %w", err)
	}
	for _, row := range rows {
		if job, ok := byID[row.JobID]; ok {
			job.RequiredSkills = append(job.RequiredSkills, row.Skill)
		}
	}
	return nil
}

func lockJob(ctx context.Context, tx *sqlx.Tx, jobID uuid.UUID) (*models.Job, error) {
	return common.LockByID[models.Job](ctx, tx, "jobs", jobID, ErrJobNotFound)
}

func setJobStatus(ctx context.Context, tx *sqlx.Tx, job *models.Job, to valueobject.JobStatus) error {
	if !job.Status.CanTransitionTo(to) {
		return invalidState("job", job.Status)
	}
	err := tx.QueryRowxContext(ctx, `
		UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at
	`, job.ID, to).Scan(&job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("job repository: set status %w", err)
	}
	job.Status = to
	return nil
}
