package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-escrow/internal/models"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (reporter_id, reported_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at
	`, report.ReporterID, report.ReportedID, report.Reason).
		Scan(&report.ID, &report.Status, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

// List возвращает жалобы, сначала необработанные.
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]models.Report, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`); err != nil {
		return nil, 0, fmt.Errorf("report repository: count %w", err)
	}
	reports := []models.Report{}
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports
		ORDER BY status = 'pending' DESC, created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("report repository: list %w", err)
	}
	return reports, total, nil
}

// MarkReviewed отмечает жалобу как рассмотренную.
func (r *ReportRepository) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	var updated uuid.UUID
	err := r.db.GetContext(ctx, &updated, `
		UPDATE reports SET status = $2 WHERE id = $1 RETURNING id
	`, id, models.ReportStatusReviewed)
	return notFoundOr(err, ErrReportNotFound, "report repository: mark reviewed")
}
