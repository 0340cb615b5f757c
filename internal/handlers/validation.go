package handlers

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/signupd/pkg/errors"
	"github.com/charlesng35/signupd/pkg/response"
	appValidator "github.com/charlesng35/signupd/pkg/validator"
)

func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	if ve, ok := err.(appValidator.ValidationErrors); ok && len(ve) > 0 {
		messages := make([]string, 0, len(ve))
		for _, failure := range ve {
			if failure.Param != "" {
				messages = append(messages, failure.Field+" failed on "+failure.Tag+"="+failure.Param)
			} else {
				messages = append(messages, failure.Field+" failed on "+failure.Tag)
			}
		}
		return strings.Join(messages, "; ")
	}

	return "invalid request payload"
}

// PasswordPolicy holds the strength requirements enforced before a password
// reaches the registration engine.
type PasswordPolicy struct {
	MinLength    int
	RequireUpper bool
	RequireLower bool
	RequireDigit bool
}

// DefaultPasswordPolicy matches the documented minimum: 8 characters with at
// least one uppercase letter, one lowercase letter, and one digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:    8,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
}

// Validate reports the first policy violation as a client-facing message, or
// an empty string when the password satisfies the policy.
func (p PasswordPolicy) Validate(password string) string {
	if len(password) < p.MinLength {
		return "password must be at least " + strconv.Itoa(p.MinLength) + " characters"
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case p.RequireUpper && !hasUpper:
		return "password must contain an uppercase letter"
	case p.RequireLower && !hasLower:
		return "password must contain a lowercase letter"
	case p.RequireDigit && !hasDigit:
		return "password must contain a digit"
	}
	return ""
}
