// Package validation содержит функции валидации входных данных.
package validation

import "unicode"

const (
	minUsernameLength = 3
	maxUsernameLength = 64
)

// IsValidUsername проверяет допустимость имени пользователя: от 3 до 64
// символов, буквы, цифры, точка, дефис и подчёркивание, первый символ —
// буква или цифра.
func IsValidUsername(username string) bool {
	runes := []rune(username)
	if len(runes) < minUsernameLength || len(runes) > maxUsernameLength {
		return false
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			continue
		case r == '.' || r == '-' || r == '_':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}
