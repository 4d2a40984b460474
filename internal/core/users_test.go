package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/flatbridge/internal/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()

	sess, err := env.svc.Register(ctx, "  alice ", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if sess.User.Username != "alice" {
		t.Errorf("Username = %q, want trimmed", sess.User.Username)
	}
	if sess.Token == "" {
		t.Fatal("Register() returned no token")
	}

	claims, err := env.svc.Authenticate(sess.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if claims.UserID != sess.User.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, sess.User.ID)
	}

	login, err := env.svc.Login(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != sess.User.ID {
		t.Errorf("Login user = %q, want %q", login.User.ID, sess.User.ID)
	}

	user, err := env.svc.GetUser(ctx, sess.User.ID)
	if err != nil || user.Username != "alice" {
		t.Errorf("GetUser() = %+v, %v", user, err)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.register(t, "alice")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong password"},
		{"unknown user", "mallory", "correct horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Login(context.Background(), tt.username, tt.password)
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogin_UnknownUserHashesPassword(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.register(t, "alice")

	var checked []string
	orig := rejectUnknownUser
	rejectUnknownUser = func(password string) error {
		checked = append(checked, password)
		return orig(password)
	}
	t.Cleanup(func() { rejectUnknownUser = orig })

	if _, err := env.svc.Login(context.Background(), "mallory", "guess1234"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := env.svc.Login(context.Background(), "alice", "wrong password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}

	if len(checked) != 1 || checked[0] != "guess1234" {
		t.Errorf("unknown-user check ran for %q, want only the unknown user", checked)
	}
}

func TestRegister_Failures(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.register(t, "alice")

	tests := []struct {
		name     string
		username string
		password string
		wantCode string
	}{
		{"taken", "alice", "another password", "AUTH004"},
		{"weak password", "bob", "short", "AUTH003"},
		{"blank username", "  ", "long enough pw", "CFG003"},
		{"long username", strings.Repeat("x", MaxUsernameLength+1), "long enough pw", "ERR000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Register(context.Background(), tt.username, tt.password)
			if err == nil {
				t.Fatal("Register() error = nil")
			}
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("MapError(%v).Code = %s, want %s", err, got, tt.wantCode)
			}
		})
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	env := newTestEnv(t, Options{})

	if _, err := env.svc.Authenticate("garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidToken", err)
	}

	noTokens := NewService(env.store, env.svc.orch, nil, Options{})
	if _, err := noTokens.Authenticate("anything"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Authenticate() without issuer error = %v, want ErrInvalidToken", err)
	}
}
