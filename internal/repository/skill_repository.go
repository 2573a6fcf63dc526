package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository/common"
)

// SkillRepository - справочник навыков.
type SkillRepository struct {
	db *sqlx.DB
}

func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// List возвращает страницу навыков по алфавиту и общее количество.
func (r *SkillRepository) List(ctx context.Context, limit, offset int) ([]models.Skill, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM skills`); err != nil {
		return nil, 0, fmt.Errorf("skill repository: count %w", err)
	}
	skills := []models.Skill{}
	err := r.db.SelectContext(ctx, &skills, `
		SELECT id, name, category, created_at FROM skills ORDER BY LOWER(name), id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("skill repository: list %w", err)
	}
	return skills, total, nil
}

func (r *SkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	return common.GetByID[models.Skill](ctx, r.db, "skills", id, ErrSkillNotFound)
}

// GetByIDs возвращает найденные навыки. Отсутствующие ID просто пропускаются.
func (r *SkillRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Skill, error) {
	skills := []models.Skill{}
	if len(ids) == 0 {
		return skills, nil
	}
	err := r.db.SelectContext(ctx, &skills, `
		SELECT id, name, category, created_at FROM skills WHERE id = ANY($1::uuid[]) ORDER BY name
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("skill repository: get by ids %w", err)
	}
	return skills, nil
}

// FindByNames ищет навыки по именам без учёта регистра.
func (r *SkillRepository) FindByNames(ctx context.Context, names []string) ([]models.Skill, error) {
	skills := []models.Skill{}
	if len(names) == 0 {
		return skills, nil
	}
	lowered := make([]string, 0, len(names))
	for _, name := range names {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(name)))
	}
	err := r.db.SelectContext(ctx, &skills, `
		SELECT id, name, category, created_at FROM skills WHERE LOWER(name) = ANY($1::text[]) ORDER BY name
	`, pq.Array(lowered))
	if err != nil {
		return nil, fmt.Errorf("skill repository: find by names %w", err)
	}
	return skills, nil
}
