package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinJobTitleLength       = 3
	MaxJobTitleLength       = 200
	MinJobDescriptionLength = 10
	MaxJobDescriptionLength = 5000
	MinProposalLength       = 10
	MaxProposalLength       = 2000
	MaxBioLength            = 1000
	MaxCommentLength        = 1000
	MinReasonLength         = 5
	MaxReasonLength         = 1000
	MaxSkillLength          = 50
	MaxSkillsCount          = 20
	MinWalletAddressLength  = 20
	MaxWalletAddressLength  = 128
	MaxExternalIDLength     = 64
	MaxDisplayNameLength    = 100
)

var walletAddressRegex = regexp.MustCompile(`^[A-Za-z0-9:_-]+$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateJobTitle проверяет заголовок заказа.
func ValidateJobTitle(title string) error {
	if err := ValidateNonEmpty("заголовок заказа", title); err != nil {
		return err
	}
	return ValidateLength("заголовок заказа", strings.TrimSpace(title), MinJobTitleLength, MaxJobTitleLength)
}

// ValidateJobDescription проверяет описание заказа.
func ValidateJobDescription(description string) error {
	if err := ValidateNonEmpty("описание заказа", description); err != nil {
		return err
	}
	return ValidateLength("описание заказа", strings.TrimSpace(description), MinJobDescriptionLength, MaxJobDescriptionLength)
}

// ValidateProposal проверяет текст отклика.
func ValidateProposal(proposal string) error {
	if err := ValidateNonEmpty("текст отклика", proposal); err != nil {
		return err
	}
	return ValidateLength("текст отклика", strings.TrimSpace(proposal), MinProposalLength, MaxProposalLength)
}

// ValidateBio проверяет описание профиля.
func ValidateBio(bio *string) error {
	if bio == nil {
		return nil
	}
	return ValidateLength("описание профиля", strings.TrimSpace(*bio), 0, MaxBioLength)
}

// ValidateComment проверяет комментарий к отзыву.
func ValidateComment(comment *string) error {
	if comment == nil {
		return nil
	}
	return ValidateLength("комментарий", strings.TrimSpace(*comment), 0, MaxCommentLength)
}

// ValidateReason проверяет причину жалобы или блокировки.
func ValidateReason(reason string) error {
	if err := ValidateNonEmpty("причина", reason); err != nil {
		return err
	}
	return ValidateLength("причина", strings.TrimSpace(reason), MinReasonLength, MaxReasonLength)
}

// ValidateWalletAddress проверяет адрес для вывода средств.
func ValidateWalletAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("адрес кошелька обязателен")
	}
	if err := ValidateLength("адрес кошелька", address, MinWalletAddressLength, MaxWalletAddressLength); err != nil {
		return err
	}
	if !walletAddressRegex.MatchString(address) {
		return fmt.Errorf("адрес кошелька содержит недопустимые символы")
	}
	return nil
}

// ValidateExternalID проверяет идентификатор пользователя во внешнем мессенджере.
func ValidateExternalID(externalID string) error {
	if err := ValidateNonEmpty("внешний идентификатор", externalID); err != nil {
		return err
	}
	return ValidateLength("внешний идентификатор", externalID, 0, MaxExternalIDLength)
}

// NormalizeSkillNames убирает пробелы и дубликаты без учёта регистра.
func NormalizeSkillNames(names []string) ([]string, error) {
	if len(names) > MaxSkillsCount {
		return nil, fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("навык не может быть пустым")
		}
		if utf8.RuneCountInString(name) > MaxSkillLength {
			return nil, fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, name)
	}
	return result, nil
}

// Optional обрезает пробелы и превращает пустую строку в nil.
func Optional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
