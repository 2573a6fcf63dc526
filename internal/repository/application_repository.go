package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository/common"
)

const applicationColumns = `id, job_id, freelancer_id, proposal, bid, status, created_at, updated_at`

// ApplicationRepository хранит отклики исполнителей.
type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create сохраняет отклик на открытый заказ. Повторный отклик той же пары
// отсекается уникальным ограничением.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status valueobject.JobStatus
		lock := `SELECT status FROM jobs WHERE id = $1 ` + string(common.ForShare)
		if err := tx.GetContext(ctx, &status, lock, app.JobID); err != nil {
			return notFoundOr(err, ErrJobNotFound, "application repository: lock job")
		}
		if status != valueobject.JobStatusOpen {
			return invalidState("job", status)
		}

		err := tx.GetContext(ctx, app, `
			INSERT INTO applications (job_id, freelancer_id, proposal, bid, status)
			VALUES ($1, $2, $3, $4, 'submitted')
			RETURNING `+applicationColumns, app.JobID, app.FreelancerID, app.Proposal, app.Bid)
		if err != nil {
			if common.IsUniqueViolation(err, "applications_job_freelancer_key") {
				return ErrAlreadyApplied
			}
			return fmt.Errorf("application repository: create %w", err)
		}
		return nil
	})
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return common.GetByID[models.Application](ctx, r.db, "applications", id, ErrApplicationNotFound)
}

// Reject отклоняет отклик клиентом, если он ещё не закрыт.
func (r *ApplicationRepository) Reject(ctx context.Context, id, clientID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var ownerID uuid.UUID
		if err := tx.GetContext(ctx, &ownerID, `
			SELECT j.client_id FROM applications a JOIN jobs j ON j.id = a.job_id WHERE a.id = $1
		`, id); err != nil {
			return notFoundOr(err, ErrApplicationNotFound, "application repository: reject lookup")
		}
		if ownerID != clientID {
			return ErrNotOwner
		}

		var err error
		app, err = common.LockByID[models.Application](ctx, tx, "applications", id, ErrApplicationNotFound)
		if err != nil {
			return err
		}
		if !app.Status.CanBeRejected() {
			return invalidState("application", app.Status)
		}
		return tx.GetContext(ctx, app, `
			UPDATE applications SET status = 'rejected', updated_at = NOW() WHERE id = $1
			RETURNING `+applicationColumns, id)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ListByJob возвращает отклики на заказ в порядке подачи.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]models.Application, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID); err != nil {
		return nil, 0, fmt.Errorf("application repository: count by job %w", err)
	}
	apps := []models.Application{}
	err := r.db.SelectContext(ctx, &apps, `
		SELECT `+applicationColumns+` FROM applications WHERE job_id = $1
		ORDER BY created_at, id LIMIT $2 OFFSET $3
	`, jobID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("application repository: list by job %w", err)
	}
	return apps, total, nil
}

// ListByFreelancer возвращает отклики исполнителя, новые сверху.
func (r *ApplicationRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Application, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications WHERE freelancer_id = $1`, freelancerID); err != nil {
		return nil, 0, fmt.Errorf("application repository: count by freelancer %w", err)
	}
	apps := []models.Application{}
	err := r.db.SelectContext(ctx, &apps, `
		SELECT `+applicationColumns+` FROM applications WHERE freelancer_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("application repository: list by freelancer %w", err)
	}
	return apps, total, nil
}
