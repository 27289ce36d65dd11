package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/session"
	"github.com/mmeshcher/bankoffice-system/internal/storage"
)

func newAuthService(t *testing.T, users ...model.User) (*Service, *memStore) {
	t.Helper()

	store := &memStore{users: users}
	svc := NewService(store, session.NewRegistry(30*time.Minute))
	return svc, store
}

func activeUser(t *testing.T, username, password string) model.User {
	t.Helper()

	return model.User{
		ID:           "u-" + username,
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: mustHash(t, password),
		Role:         model.RoleCustomer,
		Status:       model.StatusActive,
	}
}

func TestLogin_Success(t *testing.T) {
	svc, store := newAuthService(t, activeUser(t, "alice", "secret1"))
	ctx := context.Background()

	token, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	user, err := svc.ResolveSession(ctx, token)
	if err != nil {
		t.Fatalf("resolve session: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("resolved user = %q, want alice", user.Username)
	}

	if store.users[0].FailedLoginAttempts != 0 {
		t.Fatalf("failed attempts = %d, want 0", store.users[0].FailedLoginAttempts)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_FiveFailuresLockAccount(t *testing.T) {
	svc, store := newAuthService(t, activeUser(t, "alice", "secret1"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "alice", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	if store.users[0].Status != model.StatusLocked {
		t.Fatalf("status = %s, want LOCKED", store.users[0].Status)
	}

	// Шестая попытка с верным паролем: учётная запись уже заблокирована
	_, err := svc.Login(ctx, "alice", "secret1")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}
	if !strings.Contains(err.Error(), string(model.StatusLocked)) {
		t.Fatalf("error %q does not name the status", err.Error())
	}
}

func TestLogin_SuccessResetsFailedAttempts(t *testing.T) {
	svc, store := newAuthService(t, activeUser(t, "alice", "secret1"))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(ctx, "alice", "wrong")
	}
	if store.users[0].FailedLoginAttempts != 4 {
		t.Fatalf("failed attempts = %d, want 4", store.users[0].FailedLoginAttempts)
	}

	if _, err := svc.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.users[0].FailedLoginAttempts != 0 {
		t.Fatalf("failed attempts = %d, want 0 after success", store.users[0].FailedLoginAttempts)
	}
}

func TestLogin_InactiveAccountNamesStatus(t *testing.T) {
	user := activeUser(t, "alice", "secret1")
	user.Status = model.StatusInactive
	svc, _ := newAuthService(t, user)

	_, err := svc.Login(context.Background(), "alice", "secret1")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}
	if !strings.Contains(err.Error(), string(model.StatusInactive)) {
		t.Fatalf("error %q does not name the status", err.Error())
	}
}

func TestLogout_IsIdempotent(t *testing.T) {
	svc, _ := newAuthService(t, activeUser(t, "alice", "secret1"))
	ctx := context.Background()

	token, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.Logout(ctx, token)
	svc.Logout(ctx, token)
	svc.Logout(ctx, "unknown-token")

	_, err = svc.ResolveSession(ctx, token)
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("err = %v, want ErrInvalidSession", err)
	}
}

func TestResolveSession_UnknownToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ResolveSession(context.Background(), "bogus")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("err = %v, want ErrInvalidSession", err)
	}
}

func TestChangePassword_UnknownUser(t *testing.T) {
	svc, _ := newAuthService(t)

	err := svc.ChangePassword(context.Background(), "nobody", "a", "bbbbbb")
	if !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestChangePassword_IncorrectCurrent(t *testing.T) {
	svc, _ := newAuthService(t, activeUser(t, "alice", "secret1"))

	err := svc.ChangePassword(context.Background(), "alice", "wrong", "newsecret")
	if !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("err = %v, want ErrIncorrectPassword", err)
	}
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	svc, _ := newAuthService(t, activeUser(t, "alice", "secret1"))

	err := svc.ChangePassword(context.Background(), "alice", "secret1", "five5")
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}

func TestChangePassword_OldPasswordStopsWorking(t *testing.T) {
	svc, _ := newAuthService(t, activeUser(t, "alice", "secret1"))
	ctx := context.Background()

	// Ровно шесть символов — минимально допустимая длина
	if err := svc.ChangePassword(ctx, "alice", "secret1", "six666"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works, err = %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "six666"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
