package services

import (
	"net/http"

	apperrors "github.com/charlesng35/signupd/pkg/errors"
)

// Closed error taxonomy for the registration flow. Handlers map these by
// identity (errors.Is), never by message text. Invalid code, unknown email,
// and expired code all surface as ErrInvalidActivation so callers cannot
// probe which addresses are registered.
var (
	// ErrEmailTaken reports a registration conflict.
	ErrEmailTaken = apperrors.New("USER_EXISTS", "An account with this email already exists", http.StatusConflict)
	// ErrInvalidActivation covers wrong code, wrong user/code pairing, unknown
	// email, and expired code.
	ErrInvalidActivation = apperrors.New("ACTIVATION_INVALID", "Invalid email or activation code", http.StatusBadRequest)
	// ErrAlreadyActive reports activation of a user already in the terminal state.
	ErrAlreadyActive = apperrors.New("USER_ALREADY_ACTIVE", "User account is already active", http.StatusBadRequest)
	// ErrStorageUnavailable reports that a store call failed; the underlying
	// cause travels as internal detail only.
	ErrStorageUnavailable = apperrors.New("STORAGE_UNAVAILABLE", "Service temporarily unavailable", http.StatusServiceUnavailable)
)
