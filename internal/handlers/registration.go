package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/signupd/internal/models"
	"github.com/charlesng35/signupd/internal/services"
	appErrors "github.com/charlesng35/signupd/pkg/errors"
	"github.com/charlesng35/signupd/pkg/metrics"
	"github.com/charlesng35/signupd/pkg/response"
)

// RegistrationHandler exposes the register/activate flow over HTTP.
type RegistrationHandler struct {
	svc    *services.RegistrationService
	policy PasswordPolicy
}

// NewRegistrationHandler wires the registration engine to the transport.
func NewRegistrationHandler(svc *services.RegistrationService, policy PasswordPolicy) (*RegistrationHandler, error) {
	if svc == nil {
		return nil, errors.New("registration handler: service is required")
	}
	if policy.MinLength <= 0 {
		policy = DefaultPasswordPolicy()
	}
	return &RegistrationHandler{svc: svc, policy: policy}, nil
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type activateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type userResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:     user.ID,
		Email:  user.Email,
		Status: string(user.Status),
	}
}

// POST /api/register
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		metrics.RegistrationAttempts.WithLabelValues("invalid").Inc()
		return
	}

	if msg := h.policy.Validate(req.Password); msg != "" {
		metrics.RegistrationAttempts.WithLabelValues("invalid").Inc()
		response.Error(c, appErrors.NewBadRequest(msg))
		return
	}

	user, err := h.svc.Register(requestContext(c), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			metrics.RegistrationAttempts.WithLabelValues("conflict").Inc()
		default:
			metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		}
		response.Error(c, err)
		return
	}

	metrics.RegistrationAttempts.WithLabelValues("created").Inc()
	response.Success(c, http.StatusCreated, toUserResponse(user))
}

// POST /api/activate
//
// The operation accepts two bindings of the same semantics: HTTP Basic
// credentials carrying (email, code), or a JSON body. Basic auth wins when
// both are present.
func (h *RegistrationHandler) Activate(c *gin.Context) {
	email, code, ok := activationCredentials(c)
	if !ok {
		metrics.ActivationAttempts.WithLabelValues("invalid").Inc()
		return
	}

	user, err := h.svc.Activate(requestContext(c), email, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyActive):
			metrics.ActivationAttempts.WithLabelValues("already_active").Inc()
		case errors.Is(err, services.ErrInvalidActivation):
			metrics.ActivationAttempts.WithLabelValues("invalid").Inc()
		default:
			metrics.ActivationAttempts.WithLabelValues("error").Inc()
		}
		response.Error(c, err)
		return
	}

	metrics.ActivationAttempts.WithLabelValues("activated").Inc()
	response.Success(c, http.StatusOK, toUserResponse(user))
}

func activationCredentials(c *gin.Context) (email, code string, ok bool) {
	if username, password, hasBasic := c.Request.BasicAuth(); hasBasic {
		username = strings.TrimSpace(username)
		if username == "" || password == "" {
			response.Error(c, appErrors.NewBadRequest("email and code are required"))
			return "", "", false
		}
		return username, password, true
	}

	var req activateRequest
	if !bindAndValidate(c, &req) {
		return "", "", false
	}
	return req.Email, req.Code, true
}
