package login

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Field string

const (
	FieldUsername Field = "username"
	FieldPassword Field = "password"
)

type Code string

const (
	CodeRequired          Code = "required"
	CodeTooShort          Code = "too_short"
	CodeTooLong           Code = "too_long"
	CodeInvalidCharacters Code = "invalid_characters"
	CodeWeakPassword      Code = "weak_password"
)

const (
	forbiddenUsernameChars = `<>"'`
	passwordSpecialChars   = `!@#$%^&*(),.?":{}|<>`
)

// ValidationRules bounds credential fields. A zero maximum disables the upper bound.
type ValidationRules struct {
	UsernameMinLen      int `yaml:"username_min_len" validate:"gte=1"`
	UsernameMaxLen      int `yaml:"username_max_len" validate:"omitempty,gtefield=UsernameMinLen"`
	PasswordMinLen      int `yaml:"password_min_len" validate:"gte=1"`
	PasswordMaxLen      int `yaml:"password_max_len" validate:"omitempty,gtefield=PasswordMinLen"`
	PasswordMinCriteria int `yaml:"password_min_criteria" validate:"gte=0,lte=4"`
}

func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		UsernameMinLen:      3,
		UsernameMaxLen:      50,
		PasswordMinLen:      8,
		PasswordMaxLen:      128,
		PasswordMinCriteria: 3,
	}
}

type ValidationResult struct {
	Field   Field
	Valid   bool
	Code    Code
	Message string
}

func valid(field Field) ValidationResult {
	return ValidationResult{Field: field, Valid: true}
}

func invalid(field Field, code Code, msg string) ValidationResult {
	return ValidationResult{Field: field, Code: code, Message: msg}
}

// ValidateField checks one credential field against the rules. It has no side effects.
func ValidateField(field Field, value string, rules ValidationRules) ValidationResult {
	switch field {
	case FieldUsername:
		return validateUsername(value, rules)
	case FieldPassword:
		return validatePassword(value, rules)
	}

	return ValidationResult{Field: field, Message: fmt.Sprintf("unknown field %q", field)}
}

func validateUsername(value string, rules ValidationRules) ValidationResult {
	username := strings.TrimSpace(value)
	length := utf8.RuneCountInString(username)

	switch {
	case username == "":
		return invalid(FieldUsername, CodeRequired, "Username is required")
	case length < rules.UsernameMinLen:
		return invalid(FieldUsername, CodeTooShort,
			fmt.Sprintf("Username must be at least %d characters", rules.UsernameMinLen))
	case rules.UsernameMaxLen > 0 && length > rules.UsernameMaxLen:
		return invalid(FieldUsername, CodeTooLong,
			fmt.Sprintf("Username cannot exceed %d characters", rules.UsernameMaxLen))
	case strings.ContainsAny(username, forbiddenUsernameChars):
		return invalid(FieldUsername, CodeInvalidCharacters, "Username contains invalid characters")
	}

	return valid(FieldUsername)
}

func validatePassword(password string, rules ValidationRules) ValidationResult {
	length := utf8.RuneCountInString(password)

	switch {
	case password == "":
		return invalid(FieldPassword, CodeRequired, "Password is required")
	case length < rules.PasswordMinLen:
		return invalid(FieldPassword, CodeTooShort,
			fmt.Sprintf("Password must be at least %d characters", rules.PasswordMinLen))
	case rules.PasswordMaxLen > 0 && length > rules.PasswordMaxLen:
		return invalid(FieldPassword, CodeTooLong,
			fmt.Sprintf("Password cannot exceed %d characters", rules.PasswordMaxLen))
	case characterClasses(password) < rules.PasswordMinCriteria:
		return invalid(FieldPassword, CodeWeakPassword,
			fmt.Sprintf("Password must contain at least %d of: uppercase, lowercase, numbers, special characters",
				rules.PasswordMinCriteria))
	}

	return valid(FieldPassword)
}

// characterClasses counts how many of upper, lower, digit and special are present.
func characterClasses(password string) int {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		}
	}

	count := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			count++
		}
	}

	return count
}

type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

func PasswordStrength(password string) Strength {
	length := utf8.RuneCountInString(password)
	classes := characterClasses(password)

	switch {
	case length >= 12 && classes >= 4:
		return StrengthStrong
	case length >= 8 && classes >= 3:
		return StrengthMedium
	}

	return StrengthWeak
}
