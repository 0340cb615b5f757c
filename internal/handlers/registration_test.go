package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/signupd/internal/services"
	"github.com/charlesng35/signupd/internal/store"
	"github.com/charlesng35/signupd/pkg/response"
)

type codeCapture struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *codeCapture) SendActivationCode(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[email] = code
	return nil
}

func (n *codeCapture) codeFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

type handlerTestEnv struct {
	router     *gin.Engine
	dispatcher *services.Dispatcher
	users      *store.MemoryUserStore
	notifier   *codeCapture
}

func newHandlerEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := store.NewMemoryUserStore()
	tokens := store.NewMemoryTokenStore()
	notifier := &codeCapture{codes: make(map[string]string)}
	dispatcher := services.NewDispatcher()

	svc, err := services.NewRegistrationService(users, tokens, notifier, dispatcher)
	require.NoError(t, err)

	handler, err := NewRegistrationHandler(svc, DefaultPasswordPolicy())
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/register", handler.Register)
	r.POST("/api/activate", handler.Activate)

	return handlerTestEnv{router: r, dispatcher: dispatcher, users: users, notifier: notifier}
}

func (env handlerTestEnv) perform(t *testing.T, method, path, body string, auth [2]string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth[0] != "" || auth[1] != "" {
		req.SetBasicAuth(auth[0], auth[1])
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return w, payload
}

func (env handlerTestEnv) register(t *testing.T, email, password string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	body, err := json.Marshal(gin.H{"email": email, "password": password})
	require.NoError(t, err)
	w, payload := env.perform(t, http.MethodPost, "/api/register", string(body), [2]string{})

	// The activation email runs on the dispatcher; drain before the test
	// inspects captured codes.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.dispatcher.Wait(ctx))
	return w, payload
}

func TestRegisterEndpointCreatesPendingUser(t *testing.T) {
	env := newHandlerEnv(t)

	w, payload := env.register(t, "a@x.com", "Abcd1234")
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, payload.Success)

	data := payload.Data.(map[string]any)
	require.Equal(t, "a@x.com", data["email"])
	require.Equal(t, "pending", data["status"])
	require.NotEmpty(t, data["id"])

	require.NotContains(t, w.Body.String(), "Abcd1234")
}

func TestRegisterEndpointRejectsInvalidEmail(t *testing.T) {
	env := newHandlerEnv(t)

	w, payload := env.perform(t, http.MethodPost, "/api/register",
		`{"email":"not-an-address","password":"Abcd1234"}`, [2]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "BAD_REQUEST", payload.Error.Code)
}

func TestRegisterEndpointEnforcesPasswordPolicy(t *testing.T) {
	env := newHandlerEnv(t)

	cases := map[string]string{
		"too short":    "Ab1",
		"no uppercase": "abcd1234",
		"no lowercase": "ABCD1234",
		"no digit":     "Abcdefgh",
	}

	for name, password := range cases {
		t.Run(name, func(t *testing.T) {
			body, err := json.Marshal(gin.H{"email": "p@x.com", "password": password})
			require.NoError(t, err)

			w, payload := env.perform(t, http.MethodPost, "/api/register", string(body), [2]string{})
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Equal(t, "BAD_REQUEST", payload.Error.Code)
		})
	}

	require.Equal(t, 0, env.users.Count())
}

func TestRegisterEndpointConflict(t *testing.T) {
	env := newHandlerEnv(t)

	w, _ := env.register(t, "a@x.com", "Abcd1234")
	require.Equal(t, http.StatusCreated, w.Code)

	w, payload := env.register(t, "a@x.com", "Abcd1234")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "USER_EXISTS", payload.Error.Code)
	require.Equal(t, 1, env.users.Count())
}

func TestRegisterEndpointRejectsMalformedJSON(t *testing.T) {
	env := newHandlerEnv(t)

	w, payload := env.perform(t, http.MethodPost, "/api/register", "{not json", [2]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "BAD_REQUEST", payload.Error.Code)
}

func TestActivateEndpointWithJSONBody(t *testing.T) {
	env := newHandlerEnv(t)

	env.register(t, "a@x.com", "Abcd1234")
	code := env.notifier.codeFor("a@x.com")
	require.NotEmpty(t, code)

	body, err := json.Marshal(gin.H{"email": "a@x.com", "code": code})
	require.NoError(t, err)

	w, payload := env.perform(t, http.MethodPost, "/api/activate", string(body), [2]string{})
	require.Equal(t, http.StatusOK, w.Code)

	data := payload.Data.(map[string]any)
	require.Equal(t, "active", data["status"])
}

func TestActivateEndpointWithBasicAuth(t *testing.T) {
	env := newHandlerEnv(t)

	env.register(t, "a@x.com", "Abcd1234")
	code := env.notifier.codeFor("a@x.com")

	w, payload := env.perform(t, http.MethodPost, "/api/activate", "", [2]string{"a@x.com", code})
	require.Equal(t, http.StatusOK, w.Code)

	data := payload.Data.(map[string]any)
	require.Equal(t, "active", data["status"])
}

func TestActivateEndpointInvalidCode(t *testing.T) {
	env := newHandlerEnv(t)

	env.register(t, "a@x.com", "Abcd1234")
	code := env.notifier.codeFor("a@x.com")
	wrong := "0000"
	if code == wrong {
		wrong = "0001"
	}

	w, payload := env.perform(t, http.MethodPost, "/api/activate", "", [2]string{"a@x.com", wrong})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "ACTIVATION_INVALID", payload.Error.Code)
}

func TestActivateEndpointUnknownEmailMatchesWrongCode(t *testing.T) {
	env := newHandlerEnv(t)

	env.register(t, "a@x.com", "Abcd1234")

	// Unknown email and wrong code must be byte-identical responses so the
	// endpoint cannot be used to enumerate accounts.
	w1, _ := env.perform(t, http.MethodPost, "/api/activate", "", [2]string{"ghost@x.com", "1234"})
	w2, _ := env.perform(t, http.MethodPost, "/api/activate", "", [2]string{"a@x.com", "no-such-code"})

	require.Equal(t, http.StatusBadRequest, w1.Code)
	require.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestActivateEndpointAlreadyActive(t *testing.T) {
	env := newHandlerEnv(t)

	env.register(t, "a@x.com", "Abcd1234")
	code := env.notifier.codeFor("a@x.com")

	w, _ := env.perform(t, http.MethodPost, "/api/activate", "", [2]string{"a@x.com", code})
	require.Equal(t, http.StatusOK, w.Code)

	w, payload := env.perform(t, http.MethodPost, "/api/activate", "", [2]string{"a@x.com", code})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "USER_ALREADY_ACTIVE", payload.Error.Code)
}

func TestActivateEndpointRejectsEmptyCredentials(t *testing.T) {
	env := newHandlerEnv(t)

	w, payload := env.perform(t, http.MethodPost, "/api/activate", `{"email":"a@x.com"}`, [2]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "BAD_REQUEST", payload.Error.Code)
}

func TestPasswordPolicyValidate(t *testing.T) {
	policy := DefaultPasswordPolicy()

	require.Empty(t, policy.Validate("Abcd1234"))
	require.NotEmpty(t, policy.Validate("short"))
	require.NotEmpty(t, policy.Validate("alllowercase1"))
	require.NotEmpty(t, policy.Validate("ALLUPPERCASE1"))
	require.NotEmpty(t, policy.Validate("NoDigitsHere"))

	relaxed := PasswordPolicy{MinLength: 4}
	require.Empty(t, relaxed.Validate("abcd"))
}
