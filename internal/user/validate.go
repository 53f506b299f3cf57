package user

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
)

const minPasswordLength = 8

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{7,20}$`)

// validateUpdate checks the fields of a profile edit before anything is written.
func validateUpdate(req UpdateUserRequest) error {
	errs := &apperror.FieldError{}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs.Add("name", "name is required")
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != "" && !phonePattern.MatchString(phone) {
			errs.Add("phone", "phone number is not valid")
		}
	}

	return errs.OrNil()
}

// validatePassword enforces the password rules: at least eight characters
// with an upper case letter, a lower case letter and a digit.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperror.NewFieldError("password", "password must be at least 8 characters")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return apperror.NewFieldError("password", "password must contain an upper case letter")
	case !lower:
		return apperror.NewFieldError("password", "password must contain a lower case letter")
	case !digit:
		return apperror.NewFieldError("password", "password must contain a number")
	}
	return nil
}
