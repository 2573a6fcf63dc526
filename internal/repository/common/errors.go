package common

import (
	"errors"

	"github.com/lib/pq"
)

// pgUniqueViolation - код ошибки PostgreSQL при нарушении уникальности.
const pgUniqueViolation = "23505"

// IsUniqueViolation проверяет нарушение указанного ограничения уникальности.
// Пустое имя ограничения подходит под любое.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
