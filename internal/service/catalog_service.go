package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-escrow/internal/models"
	"github.com/ignatzorin/freelance-escrow/internal/validation"
)

type SkillRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Skill, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Skill, error)
	FindByNames(ctx context.Context, names []string) ([]models.Skill, error)
}

// SkillToggler меняет набор навыков пользователя.
type SkillToggler interface {
	UserGetter
	ToggleSkill(ctx context.Context, userID, skillID uuid.UUID) (bool, error)
}

// CatalogService - справочник навыков и навыки исполнителей.
type CatalogService struct {
	skills SkillRepository
	users  SkillToggler
	cache  *CacheService
}

// NewCatalogService создает сервис. cache может быть nil.
func NewCatalogService(skills SkillRepository, users SkillToggler, cache *CacheService) *CatalogService {
	return &CatalogService{skills: skills, users: users, cache: cache}
}

// ListSkills возвращает страницу справочника по алфавиту.
func (s *CatalogService) ListSkills(ctx context.Context, page int) (*models.Page[models.Skill], error) {
	page, limit, offset := pageBounds(page, models.SkillsPageSize)
	cached, err := s.cache.GetOrSet(skillPageCacheKey(page), func() (any, error) {
		skills, total, err := s.skills.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		return newPage(skills, page, limit, total), nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return cached.(*models.Page[models.Skill]), nil
}

// FindByNames ищет навыки по именам без учёта регистра. Неизвестные имена пропускаются.
func (s *CatalogService) FindByNames(ctx context.Context, names []string) ([]models.Skill, error) {
	normalized, err := validation.NormalizeSkillNames(names)
	if err != nil {
		return nil, invalid(err)
	}
	skills, err := s.skills.FindByNames(ctx, normalized)
	if err != nil {
		return nil, translate(err)
	}
	return skills, nil
}

// ToggleSkill добавляет или убирает навык исполнителя. Возвращает актуальный набор навыков.
func (s *CatalogService) ToggleSkill(ctx context.Context, userID, skillID uuid.UUID) (bool, []models.Skill, error) {
	if _, err := actor(ctx, s.users, userID, valueobject.RoleFreelancer); err != nil {
		return false, nil, err
	}
	if _, err := s.skills.GetByID(ctx, skillID); err != nil {
		return false, nil, translate(err)
	}

	added, err := s.users.ToggleSkill(ctx, userID, skillID)
	if err != nil {
		return false, nil, translate(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, nil, translate(err)
	}
	return added, user.Skills, nil
}
