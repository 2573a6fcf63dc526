package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill - справочный навык. Имя уникально без учёта регистра.
type Skill struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  *string   `db:"category" json:"category,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SkillIDs возвращает идентификаторы навыков.
func SkillIDs(skills []Skill) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(skills))
	for _, s := range skills {
		ids = append(ids, s.ID)
	}
	return ids
}
