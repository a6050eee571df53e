package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wearefrancis/auth/internal/security/password"
	"github.com/wearefrancis/auth/internal/service"
	"github.com/wearefrancis/auth/internal/store/memory"
	"github.com/wearefrancis/auth/internal/token"
)

func newLoginFixture(t *testing.T) (*service.LoginService, *token.Codec) {
	t.Helper()
	st := memory.New()
	codec := token.NewCodec("test-secret-test-secret-test-secret", time.Hour, nil)
	users := service.NewUserService(st, fakeHasher{}, nil, password.DefaultPolicy)
	if _, err := users.Register(context.Background(), validInput(), true); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return service.NewLoginService(st, fakeHasher{}, codec), codec
}

func TestLoginSuccess(t *testing.T) {
	login, codec := newLoginFixture(t)

	jwt, err := login.Login(context.Background(), "gibson", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := codec.Decode(jwt)
	if err != nil {
		t.Fatalf("decode issued token: %v", err)
	}
	if claims.Subject != "gibson" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

// Username inexistente y password incorrecto devuelven el mismo error:
// el login no revela si el username existe.
func TestLoginBadCredentialsUniform(t *testing.T) {
	login, _ := newLoginFixture(t)
	ctx := context.Background()

	_, errUnknown := login.Login(ctx, "ghost", "Sup3r$ecret")
	_, errWrongPass := login.Login(ctx, "gibson", "wrong")

	if !errors.Is(errUnknown, service.ErrBadCredentials) {
		t.Errorf("unknown user: err = %v", errUnknown)
	}
	if !errors.Is(errWrongPass, service.ErrBadCredentials) {
		t.Errorf("wrong password: err = %v", errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Error("error messages must not distinguish the failure cause")
	}
}

// El login no mira enabled/locked: el token emitido para una cuenta
// deshabilitada simplemente no pasa Validate.
func TestLoginIssuesForDisabledAccount(t *testing.T) {
	st := memory.New()
	codec := token.NewCodec("test-secret-test-secret-test-secret", time.Hour, nil)
	users := service.NewUserService(st, fakeHasher{}, nil, password.DefaultPolicy)
	if _, err := users.Register(context.Background(), validInput(), false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	login := service.NewLoginService(st, fakeHasher{}, codec)

	jwt, err := login.Login(context.Background(), "gibson", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	acct, _ := st.Accounts().FindByUsername(context.Background(), "gibson")
	ok, err := codec.Validate(jwt, acct)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Error("token for a disabled account must not validate")
	}
}
