package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wearefrancis/auth/internal/authz"
	"github.com/wearefrancis/auth/internal/domain"
	authhttp "github.com/wearefrancis/auth/internal/http"
	"github.com/wearefrancis/auth/internal/security/password"
	"github.com/wearefrancis/auth/internal/service"
	"github.com/wearefrancis/auth/internal/store/memory"
	"github.com/wearefrancis/auth/internal/token"
)

// captureNotifier records the activation value mailed to each account.
type captureNotifier struct {
	values map[uuid.UUID]uuid.UUID
}

func (n *captureNotifier) SendActivation(ctx context.Context, acct *domain.Account, value string) error {
	n.values[acct.ID] = uuid.MustParse(value)
	return nil
}

type fixture struct {
	handler  http.Handler
	store    *memory.Store
	codec    *token.Codec
	hasher   *password.Hasher
	notifier *captureNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	hasher := password.New(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32})
	codec := token.NewCodec("test-secret-test-secret-test-secret", time.Hour, nil)
	notifier := &captureNotifier{values: make(map[uuid.UUID]uuid.UUID)}

	users := service.NewUserService(st, hasher, notifier, password.DefaultPolicy)
	login := service.NewLoginService(st, hasher, codec)
	eval := authz.NewEvaluator(st.Accounts())

	handler, err := authhttp.NewRouter(authhttp.RouterDeps{
		Store: st,
		Codec: codec,
		Users: users,
		Login: login,
		Eval:  eval,
	})
	require.NoError(t, err)
	return &fixture{handler: handler, store: st, codec: codec, hasher: hasher, notifier: notifier}
}

// seed persists an account with a working password and returns it with a
// minted bearer token.
func (f *fixture) seed(t *testing.T, username string, role domain.Role) (*domain.Account, string) {
	t.Helper()
	hash, err := f.hasher.Hash("Sup3r$ecret")
	require.NoError(t, err)
	acct := &domain.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}
	_, err = f.store.Accounts().Save(context.Background(), acct)
	require.NoError(t, err)
	tok, err := f.codec.Mint(username)
	require.NoError(t, err)
	return acct, tok
}

func (f *fixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func TestRegisterActivateLoginLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// registro anónimo
	rec := f.do(t, http.MethodPost, "/v1/users", "", map[string]string{
		"username": "gibson",
		"email":    "gibson@example.org",
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, "gibson", body["username"])
	require.NotContains(t, body, "enabled", "owner view must not expose moderation flags")

	acct, err := f.store.Accounts().FindByUsername(ctx, "gibson")
	require.NoError(t, err)
	require.False(t, acct.Enabled)

	// el login emite, pero el token no sirve hasta activar
	rec = f.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"username": "gibson", "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	jwt := decodeBody(t, rec)["jwt"].(string)
	require.NotEmpty(t, jwt)

	rec = f.do(t, http.MethodGet, "/v1/users", jwt, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "disabled account token must not authenticate")

	// activar con el valor que se mandó por mail
	activation, ok := f.notifier.values[acct.ID]
	require.True(t, ok, "no activation mail captured")
	rec = f.do(t, http.MethodPut, "/v1/users/activate/"+activation.String(), "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// segundo uso del mismo token: 404
	rec = f.do(t, http.MethodPut, "/v1/users/activate/"+activation.String(), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// ahora el token de sesión autentica
	rec = f.do(t, http.MethodGet, "/v1/users", jwt, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeBody(t, rec)
	require.Equal(t, "gibson", me["username"])
	require.Equal(t, "gibson@example.org", me["email"])
}

func TestLoginViaQueryParams(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "gibson", domain.RoleUser)

	rec := f.do(t, http.MethodGet, "/v1/login?username=gibson&password=Sup3r%24ecret", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, decodeBody(t, rec)["jwt"])
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestLoginBadCredentialsShape(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "gibson", domain.RoleUser)

	for _, body := range []map[string]string{
		{"username": "ghost", "password": "Sup3r$ecret"},
		{"username": "gibson", "password": "wrong"},
	} {
		rec := f.do(t, http.MethodPost, "/v1/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "BAD_CREDENTIALS", decodeBody(t, rec)["code"])
	}
}

func TestGetUserProjections(t *testing.T) {
	f := newFixture(t)
	target, _ := f.seed(t, "gibson", domain.RoleUser)
	_, adminTok := f.seed(t, "root_admin", domain.RoleAdmin)

	// anónimo: vista pública por username
	rec := f.do(t, http.MethodGet, "/v1/users/gibson", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "gibson", body["username"])
	require.NotContains(t, body, "email")
	require.NotContains(t, body, "role")

	// admin: vista completa por id
	rec = f.do(t, http.MethodGet, "/v1/users/"+target.ID.String(), adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, "gibson@example.org", body["email"])
	require.Contains(t, body, "enabled")
	require.Contains(t, body, "locked")

	// segmento que no es ni UUID ni username
	rec = f.do(t, http.MethodGet, "/v1/users/a!", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// inexistente
	rec = f.do(t, http.MethodGet, "/v1/users/"+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizationMatrix(t *testing.T) {
	f := newFixture(t)
	target, targetTok := f.seed(t, "gibson", domain.RoleUser)
	_, userTok := f.seed(t, "mallory", domain.RoleUser)
	admin, adminTok := f.seed(t, "root_admin", domain.RoleAdmin)
	superAcct, superTok := f.seed(t, "overlord", domain.RoleSuperAdmin)

	update := map[string]string{"email": "new@example.org", "password": "N3w$ecret1"}

	// update ajeno: anónimo 401, par 403, admin 200
	rec := f.do(t, http.MethodPut, "/v1/users/"+target.ID.String(), "", update)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(t, http.MethodPut, "/v1/users/"+target.ID.String(), userTok, update)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPut, "/v1/users/"+target.ID.String(), adminTok, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// lock: admin sobre par OK; sobre sí mismo 403; sobre super admin 403
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/lock", target.ID), adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/lock", admin.ID), adminTok, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/lock", superAcct.ID), adminTok, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// la cuenta bloqueada pierde la sesión al instante
	rec = f.do(t, http.MethodGet, "/v1/users", targetTok, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// unlock por super admin
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/unlock", target.ID), superTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// changeRole: admin 403, super admin OK, super admin sobre sí mismo 403
	roleBody := map[string]string{"role": "ADMIN"}
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/role", target.ID), adminTok, roleBody)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/role", target.ID), superTok, roleBody)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ADMIN", decodeBody(t, rec)["role"])
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/v1/users/%s/role", superAcct.ID), superTok, roleBody)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// delete: admin 403, dueño OK
	rec = f.do(t, http.MethodDelete, "/v1/users/"+target.ID.String(), adminTok, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodDelete, "/v1/users/"+superAcct.ID.String(), superTok, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegisterRequiresPrivilegeOrAnonymity(t *testing.T) {
	f := newFixture(t)
	_, userTok := f.seed(t, "mallory", domain.RoleUser)
	_, adminTok := f.seed(t, "root_admin", domain.RoleAdmin)

	body := map[string]string{
		"username": "newcomer",
		"email":    "newcomer@example.org",
		"password": "Sup3r$ecret",
	}

	// usuario común autenticado no puede crear cuentas
	rec := f.do(t, http.MethodPost, "/v1/users", userTok, body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// admin sí, y la cuenta nace habilitada (vista admin)
	rec = f.do(t, http.MethodPost, "/v1/users", adminTok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	require.Equal(t, true, created["enabled"])
}

func TestRegisterConflictAndValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "gibson", domain.RoleUser)

	rec := f.do(t, http.MethodPost, "/v1/users", "", map[string]string{
		"username": "gibson", "email": "else@example.org", "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "ALREADY_EXISTS", decodeBody(t, rec)["code"])

	rec = f.do(t, http.MethodPost, "/v1/users", "", map[string]string{
		"username": "x", "email": "x@example.org", "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", decodeBody(t, rec)["code"])
}

func TestErrorEnvelopeOnUnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
