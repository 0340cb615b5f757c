package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/signupd/internal/models"
	"github.com/charlesng35/signupd/internal/store"
	"github.com/charlesng35/signupd/pkg/crypto"
	"github.com/charlesng35/signupd/pkg/logger"
)

const (
	defaultActivationTTL = 15 * time.Minute
	defaultCodeLength    = 4
)

// RegistrationOption customises the RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithActivationTTL overrides the activation code lifetime.
func WithActivationTTL(d time.Duration) RegistrationOption {
	return func(s *RegistrationService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithCodeLength adjusts the number of digits in generated activation codes.
func WithCodeLength(length int) RegistrationOption {
	return func(s *RegistrationService) {
		if length > 0 {
			s.codeLength = length
		}
	}
}

// WithClock injects a custom time source.
func WithClock(clock func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// RegistrationService orchestrates user registration and activation. It holds
// no entity state between calls; everything lives in the injected stores, so
// any number of calls may run concurrently. Per-email serialisation is
// delegated to the user store's uniqueness constraint.
type RegistrationService struct {
	users      store.UserStore
	tokens     store.TokenStore
	notifier   Notifier
	dispatcher *Dispatcher
	ttl        time.Duration
	codeLength int
	now        func() time.Time
	log        *zap.Logger
}

// NewRegistrationService constructs the engine. The notifier may be nil, in
// which case no activation email is dispatched.
func NewRegistrationService(users store.UserStore, tokens store.TokenStore, notifier Notifier, dispatcher *Dispatcher, opts ...RegistrationOption) (*RegistrationService, error) {
	if users == nil {
		return nil, errors.New("registration service: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("registration service: token store is required")
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}

	service := &RegistrationService{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		ttl:        defaultActivationTTL,
		codeLength: defaultCodeLength,
		now:        time.Now,
		log:        logger.WithModule("registration"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// ActivationTTL reports the configured code lifetime.
func (s *RegistrationService) ActivationTTL() time.Duration {
	return s.ttl
}

// Register creates a pending user, issues an activation code, and schedules
// the notification email. The email is fire-and-forget: registration
// succeeds regardless of delivery outcome. Email syntax and password policy
// are the caller's responsibility.
func (s *RegistrationService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		s.log.Warn("registration rejected, email exists", zap.String("email", email))
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, s.storeFailure("lookup user", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("registration service: hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Status:       models.StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			// A concurrent registration won the race; same outcome as the
			// upfront lookup.
			s.log.Warn("registration lost uniqueness race", zap.String("email", email))
			return nil, ErrEmailTaken
		}
		return nil, s.storeFailure("create user", err)
	}
	s.log.Info("user created", zap.String("user_id", user.ID))

	code, err := crypto.GenerateNumericCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("registration service: generate code: %w", err)
	}

	token := &models.ActivationToken{
		UserID:    user.ID,
		Code:      code,
		CreatedAt: s.now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, s.storeFailure("create token", err)
	}
	s.log.Debug("activation token issued", zap.String("user_id", user.ID))

	if s.notifier != nil {
		recipient := user.Email
		s.dispatcher.Submit("activation-email", func(taskCtx context.Context) error {
			return s.notifier.SendActivationCode(taskCtx, recipient, code)
		})
		s.log.Debug("activation email scheduled", zap.String("user_id", user.ID))
	}

	return user, nil
}

// Activate transitions a pending user to active when presented with a valid,
// unexpired code. Unknown email, wrong code, and expired code all yield
// ErrInvalidActivation. A code exactly at the TTL boundary is still accepted.
func (s *RegistrationService) Activate(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn("activation rejected, unknown email", zap.String("email", email))
			return nil, ErrInvalidActivation
		}
		return nil, s.storeFailure("lookup user", err)
	}

	if user.IsActive() {
		s.log.Warn("activation rejected, already active", zap.String("user_id", user.ID))
		return nil, ErrAlreadyActive
	}

	token, err := s.tokens.Find(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn("activation rejected, no matching token", zap.String("user_id", user.ID))
			return nil, ErrInvalidActivation
		}
		return nil, s.storeFailure("lookup token", err)
	}

	now := s.now()
	if age := now.Sub(token.CreatedAt); age > s.ttl {
		// Remove the dead token so a re-submitted expired code cannot linger.
		if delErr := s.tokens.DeleteByUser(ctx, user.ID); delErr != nil {
			s.log.Warn("expired token cleanup failed", zap.String("user_id", user.ID), zap.Error(delErr))
		}
		s.log.Warn("activation rejected, token expired",
			zap.String("user_id", user.ID),
			zap.Duration("age", age),
		)
		return nil, ErrInvalidActivation
	}

	if err := s.users.UpdateStatus(ctx, user.ID, models.StatusActive, now); err != nil {
		return nil, s.storeFailure("update status", err)
	}
	// Token deletion is idempotent; if it fails here the user is already
	// active, so a retried activation reports AlreadyActive and the stale
	// token is reclaimed by the maintenance job.
	if err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return nil, s.storeFailure("delete token", err)
	}

	user.Status = models.StatusActive
	user.UpdatedAt = &now
	s.log.Info("user activated", zap.String("user_id", user.ID))
	return user, nil
}

func (s *RegistrationService) storeFailure(op string, err error) error {
	s.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return ErrStorageUnavailable.WithInternal(fmt.Errorf("%s: %w", op, err))
}
