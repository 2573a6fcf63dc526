package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/repository/common"
)

const userColumns = `id, external_id, username, display_name, role, status, balance, bio, admin_notes, created_at, updated_at`

// UserRepository отвечает за работу с таблицами users и user_skills.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreateByExternalID находит пользователя по внешнему идентификатору
// или создаёт нового без роли. Повторный вызов не дублирует запись.
func (r *UserRepository) GetOrCreateByExternalID(ctx context.Context, externalID string, username *string, displayName string) (*models.User, bool, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (external_id, username, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING `+userColumns, externalID, username, displayName)
	if err == nil {
		return &user, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("user repository: create %w", err)
	}

	existing, err := common.GetByField[models.User](ctx, r.db, "users", "external_id", externalID, ErrUserNotFound)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID возвращает пользователя вместе с навыками.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	skills := []models.Skill{}
	if err := r.db.SelectContext(ctx, &skills, `
		SELECT s.id, s.name, s.category, s.created_at
		FROM user_skills us JOIN skills s ON s.id = us.skill_id
		WHERE us.user_id = $1 ORDER BY s.name
	`, id); err != nil {
		return nil, fmt.Errorf("user repository: load skills %w", err)
	}
	user.Skills = skills
	return user, nil
}

// SetRole задаёт роль один раз: запрос срабатывает только для пользователя без роли.
func (r *UserRepository) SetRole(ctx context.Context, userID uuid.UUID, role valueobject.Role) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 AND role = ''
		RETURNING `+userColumns, userID, role)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user repository: set role %w", err)
	}
	if _, err := common.GetByID[models.User](ctx, r.db, "users", userID, ErrUserNotFound); err != nil {
		return nil, err
	}
	return nil, ErrRoleAlreadySet
}

// SetStatus блокирует или разблокирует пользователя. Причина пишется в заметки
// администратора; без причины прежние заметки сохраняются.
func (r *UserRepository) SetStatus(ctx context.Context, userID uuid.UUID, status valueobject.UserStatus, note *string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET status = $2, admin_notes = COALESCE($3, admin_notes), updated_at = NOW() WHERE id = $1
		RETURNING `+userColumns, userID, status, note)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "user repository: set status")
	}
	return &user, nil
}

// UpdateBio обновляет описание профиля.
func (r *UserRepository) UpdateBio(ctx context.Context, userID uuid.UUID, bio *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET bio = $2, updated_at = NOW() WHERE id = $1`, userID, bio)
	if err != nil {
		return fmt.Errorf("user repository: update bio %w", err)
	}
	n, err := rowsAffected(res, "user repository: update bio")
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ToggleSkill добавляет навык пользователю или убирает, если он уже есть.
// Возвращает true, если навык теперь у пользователя есть.
func (r *UserRepository) ToggleSkill(ctx context.Context, userID, skillID uuid.UUID) (bool, error) {
	added := false
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM user_skills WHERE user_id = $1 AND skill_id = $2`, userID, skillID)
		if err != nil {
			return fmt.Errorf("user repository: remove skill %w", err)
		}
		n, err := rowsAffected(res, "user repository: remove skill")
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_skills (user_id, skill_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, userID, skillID); err != nil {
			return fmt.Errorf("user repository: add skill %w", err)
		}
		added = true
		return nil
	})
	return added, err
}

// ListUsers возвращает страницу пользователей для администратора.
func (r *UserRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("user repository: count users %w", err)
	}
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2
	`, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("user repository: list users %w", err)
	}
	return users, total, nil
}

// ListFreelancersBySkills возвращает активных исполнителей, у которых есть
// хотя бы один из навыков. Каждый исполнитель встречается один раз.
func (r *UserRepository) ListFreelancersBySkills(ctx context.Context, skillIDs []uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	if len(skillIDs) == 0 {
		return users, nil
	}
	err := r.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users u
		WHERE u.role = 'freelancer' AND u.status = 'active'
		  AND EXISTS (
		      SELECT 1 FROM user_skills us WHERE us.user_id = u.id AND us.skill_id = ANY($1::uuid[])
		  )
		ORDER BY u.created_at, u.id
	`, pq.Array(skillIDs))
	if err != nil {
		return nil, fmt.Errorf("user repository: list freelancers by skills %w", err)
	}
	return users, nil
}
