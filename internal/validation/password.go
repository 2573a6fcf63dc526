package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MinAdminPasswordLength - минимальная длина пароля консоли администратора.
const MinAdminPasswordLength = 12

// ValidateAdminPassword проверяет пароль администратора: длина, буквы разного регистра и цифры.
func ValidateAdminPassword(password string) error {
	if utf8.RuneCountInString(password) < MinAdminPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinAdminPasswordLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsSpace(char):
			return fmt.Errorf("пароль не должен содержать пробелы")
		}
	}

	if !hasUpper || !hasLower {
		return fmt.Errorf("пароль должен содержать заглавные и строчные буквы")
	}
	if !hasNumber {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	return nil
}
