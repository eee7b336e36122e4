package validation

import (
	"errors"
	"strings"
	"testing"

	"santaswishlist/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Jolly Elf",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "Dasher",
			wantErr: false,
		},
		{
			name:    "empty username",
			input:   "",
			wantErr: true,
		},
		{
			name:    "username too short",
			input:   "D",
			wantErr: true,
		},
		{
			name:    "username with hyphen",
			input:   "jolly-reindeer",
			wantErr: false,
		},
		{
			name:    "username with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
		{
			name:     "password longer than bcrypt accepts",
			password: strings.Repeat("x", 73),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsernameTooLong(t *testing.T) {
	if err := ValidateUsername(strings.Repeat("a", 33)); err == nil {
		t.Error("ValidateUsername() expected error for 33 characters")
	}
	if err := ValidateUsername(strings.Repeat("🎅", 32)); err != nil {
		t.Errorf("ValidateUsername() counts runes, got %v", err)
	}
}

func TestValidateWishTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "valid title", title: "Red bicycle", wantErr: false},
		{name: "empty title", title: "", wantErr: true},
		{name: "whitespace only", title: "   ", wantErr: true},
		{name: "title too long", title: strings.Repeat("a", 121), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWishTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWishTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWishDescription(t *testing.T) {
	if err := ValidateWishDescription(""); err != nil {
		t.Errorf("ValidateWishDescription(\"\") error = %v", err)
	}
	if err := ValidateWishDescription(strings.Repeat("a", 1001)); err == nil {
		t.Error("ValidateWishDescription() expected error for long description")
	}
}

func TestValidateCategoryAndStatus(t *testing.T) {
	for _, c := range models.WishCategories {
		if err := ValidateCategory(c); err != nil {
			t.Errorf("ValidateCategory(%q) error = %v", c, err)
		}
	}
	for _, s := range models.WishStatuses {
		if err := ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%q) error = %v", s, err)
		}
	}

	var verr ValidationError
	if err := ValidateCategory("coal"); !errors.As(err, &verr) || verr.Field != "category" {
		t.Errorf("ValidateCategory(coal) = %v, want category ValidationError", err)
	}
	if err := ValidateStatus("lost"); !errors.As(err, &verr) || verr.Field != "status" {
		t.Errorf("ValidateStatus(lost) = %v, want status ValidationError", err)
	}
}

func TestValidatePreferences(t *testing.T) {
	tests := []struct {
		name    string
		prefs   models.Preferences
		wantErr bool
	}{
		{name: "defaults", prefs: models.Preferences{Theme: "light", Notifications: true, Language: "en"}},
		{name: "dark with region", prefs: models.Preferences{Theme: "dark", Language: "en-GB"}},
		{name: "unknown theme", prefs: models.Preferences{Theme: "neon", Language: "en"}, wantErr: true},
		{name: "bad language", prefs: models.Preferences{Theme: "light", Language: "english"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePreferences(tt.prefs)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePreferences() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
