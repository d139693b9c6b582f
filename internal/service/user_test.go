package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/metrics"
	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/repository"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	users  map[string]*model.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *model.User) error {
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.Email] = &copied
	return nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func newTestUserService(store *fakeUserStore, recorder metrics.Recorder) *UserService {
	return NewUserService(store, auth.NewTokenIssuer("test-secret"), time.Hour, recorder)
}

func TestUserService_Register(t *testing.T) {
	store := newFakeUserStore()
	rec := metrics.NewInMemory()
	svc := newTestUserService(store, rec)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Fisher",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected a generated user ID")
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
	if user.HashedPassword == "hunter22" || user.HashedPassword == "" {
		t.Error("password must be stored hashed")
	}

	match, err := auth.VerifyPassword("hunter22", user.HashedPassword)
	if err != nil || !match {
		t.Errorf("stored hash should verify the original password, match=%v err=%v", match, err)
	}

	if got := rec.Snapshot().UsersRegistered; got != 1 {
		t.Errorf("UsersRegistered = %d, want 1", got)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store, nil)

	input := RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Fisher",
		Password: "hunter22",
	}

	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), input)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("second Register error = %v, want ErrEmailTaken", err)
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	svc := newTestUserService(newFakeUserStore(), nil)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"missing email", RegisterInput{FullName: "A", Password: "x"}, ErrEmailRequired},
		{"blank email", RegisterInput{Email: "  ", FullName: "A", Password: "x"}, ErrEmailRequired},
		{"missing name", RegisterInput{Email: "a@b.c", Password: "x"}, ErrFullNameRequired},
		{"missing password", RegisterInput{Email: "a@b.c", FullName: "A"}, ErrPasswordRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserService_Login(t *testing.T) {
	store := newFakeUserStore()
	rec := metrics.NewInMemory()
	svc := newTestUserService(store, rec)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Fisher",
		Password: "hunter22",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// The issued token carries the email as subject.
	subject, err := auth.NewTokenIssuer("test-secret").Verify(token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if subject != "alice@example.com" {
		t.Errorf("token subject = %q, want %q", subject, "alice@example.com")
	}

	snap := rec.Snapshot()
	if snap.LoginSuccesses != 1 {
		t.Errorf("LoginSuccesses = %d, want 1", snap.LoginSuccesses)
	}
}

func TestUserService_Login_InvalidCredentials(t *testing.T) {
	store := newFakeUserStore()
	rec := metrics.NewInMemory()
	svc := newTestUserService(store, rec)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Fisher",
		Password: "hunter22",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown email must fail identically so account
	// existence is not leaked.
	_, errWrongPassword := svc.Login(context.Background(), "alice@example.com", "wrong")
	_, errUnknownEmail := svc.Login(context.Background(), "nobody@example.com", "hunter22")

	if !errors.Is(errWrongPassword, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Error("wrong password and unknown email should produce identical errors")
	}

	if got := rec.Snapshot().LoginFailures; got != 2 {
		t.Errorf("LoginFailures = %d, want 2", got)
	}
}

func TestUserService_Login_InactiveUser(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store, nil)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		FullName: "Alice Fisher",
		Password: "hunter22",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	store.users["alice@example.com"].IsActive = false

	_, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	if !errors.Is(err, ErrInactiveUser) {
		t.Errorf("Login error = %v, want ErrInactiveUser", err)
	}
}
