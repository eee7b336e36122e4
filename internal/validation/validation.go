package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"santaswishlist/internal/models"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	languageRegex = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)
)

const (
	maxPasswordBytes  = 72 // bcrypt ignores anything longer
	maxUsernameLength = 32
	maxTitleLength    = 120
	maxDescLength     = 1000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > maxPasswordBytes {
		return ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	return nil
}

// ValidateUsername checks if a display name is valid
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	n := utf8.RuneCountInString(username)
	if n < 2 {
		return ValidationError{Field: "username", Message: "username must be at least 2 characters"}
	}
	if n > maxUsernameLength {
		return ValidationError{Field: "username", Message: fmt.Sprintf("username must be at most %d characters", maxUsernameLength)}
	}
	return nil
}

// ValidateWishTitle checks that a wish has a usable title
func ValidateWishTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength)}
	}
	return nil
}

// ValidateWishDescription limits description length; empty is allowed
func ValidateWishDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescLength {
		return ValidationError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", maxDescLength)}
	}
	return nil
}

// ValidateCategory checks the category against the known set
func ValidateCategory(category models.WishCategory) error {
	if !category.IsValid() {
		return ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	return nil
}

// ValidateStatus checks the status against the known lifecycle
func ValidateStatus(status models.WishStatus) error {
	if !status.IsValid() {
		return ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return nil
}

// ValidatePreferences checks theme and language
func ValidatePreferences(p models.Preferences) error {
	if p.Theme != "light" && p.Theme != "dark" {
		return ValidationError{Field: "theme", Message: "theme must be light or dark"}
	}
	if !languageRegex.MatchString(p.Language) {
		return ValidationError{Field: "language", Message: "invalid language code"}
	}
	return nil
}
