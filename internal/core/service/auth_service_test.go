package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

func newAuthService() (*AuthService, *stubUserRepo, *stubIdentityRepo) {
	users := newStubUserRepo()
	identities := newStubIdentityRepo()
	return NewAuthService(users, identities, bcrypt.MinCost, time.Hour, zerolog.Nop()), users, identities
}

func registration(username, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Fullname:        "Frida Kahlo",
		Username:        username,
		Email:           email,
		Phone:           "555-0100",
		Password:        "s3cret!",
		ConfirmPassword: "s3cret!",
		Gender:          "female",
	}
}

func TestRegister_Success(t *testing.T) {
	svc, users, _ := newAuthService()

	user, err := svc.Register(context.Background(), registration("frida", "Frida@Example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "frida@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Role != domain.RoleUser || !user.IsActive {
		t.Fatalf("expected active user role, got %+v", user)
	}
	stored := users.byID[user.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == "s3cret!" {
		t.Fatalf("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret!")) != nil {
		t.Fatalf("stored hash does not match password")
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newAuthService()

	if _, err := svc.Register(context.Background(), registration("frida", "frida@example.com")); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := svc.Register(context.Background(), registration("frida2", "frida@example.com"))
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegister_PasswordMismatchRejectedBeforeWrite(t *testing.T) {
	svc, users, _ := newAuthService()

	in := registration("frida", "frida@example.com")
	in.ConfirmPassword = "different"
	_, err := svc.Register(context.Background(), in)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "confirmPassword" {
		t.Fatalf("expected confirmPassword validation error, got %v", err)
	}
	if users.createCalls != 0 {
		t.Fatalf("expected no repository write, got %d", users.createCalls)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, users, _ := newAuthService()

	cases := map[string]func(in *ports.RegisterInput){
		"fullname": func(in *ports.RegisterInput) { in.Fullname = " " },
		"username": func(in *ports.RegisterInput) { in.Username = "" },
		"email":    func(in *ports.RegisterInput) { in.Email = "not-an-email" },
		"password": func(in *ports.RegisterInput) { in.Password = ""; in.ConfirmPassword = "" },
	}
	for field, edit := range cases {
		in := registration("frida", "frida@example.com")
		edit(&in)
		_, err := svc.Register(context.Background(), in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
	}
	if users.createCalls != 0 {
		t.Fatalf("expected no repository write")
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	svc, _, _ := newAuthService()
	if _, err := svc.Register(context.Background(), registration("frida", "frida@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), "frida@example.com", "nope")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "nope")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) || !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for both, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword.Error(), unknownEmail.Error())
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newAuthService()
	user, err := svc.Register(context.Background(), registration("frida", "frida@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := svc.Login(context.Background(), "  FRIDA@example.com ", "s3cret!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.UserID != user.ID || sess.Name != "Frida Kahlo" || sess.Role != domain.RoleUser {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.Provider != domain.ProviderLocal {
		t.Fatalf("expected local provider, got %s", sess.Provider)
	}
	if !sess.ExpiresAt.After(sess.CreatedAt) {
		t.Fatalf("session must expire after creation")
	}
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	svc, users, _ := newAuthService()
	user, err := svc.Register(context.Background(), registration("frida", "frida@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	users.byID[user.ID].IsActive = false

	if _, err := svc.Login(context.Background(), "frida@example.com", "s3cret!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginWithProvider_ReusesIdentity(t *testing.T) {
	svc, _, identities := newAuthService()
	profile := domain.ProviderProfile{Provider: "google", Subject: "1234", Name: "Frida", Email: "Frida@Gmail.com"}

	first, err := svc.LoginWithProvider(context.Background(), profile)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.LoginWithProvider(context.Background(), profile)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.UserID != second.UserID {
		t.Fatalf("expected same identity, got %s and %s", first.UserID, second.UserID)
	}
	if len(identities.byKey) != 1 {
		t.Fatalf("expected one identity, got %d", len(identities.byKey))
	}
	if first.Provider != "google" || first.Email != "frida@gmail.com" {
		t.Fatalf("unexpected session: %+v", first)
	}

	if _, err := svc.LoginWithProvider(context.Background(), domain.ProviderProfile{Provider: "google"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials without subject, got %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, users, _ := newAuthService()
	user, err := svc.Register(context.Background(), registration("frida", "frida@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := svc.Login(context.Background(), "frida@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	anon, err := svc.CurrentUser(context.Background(), nil)
	if err != nil || anon != nil {
		t.Fatalf("expected nil for anonymous, got %+v %v", anon, err)
	}

	cu, err := svc.CurrentUser(context.Background(), sess)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if cu.ID != user.ID || cu.Username != "frida" || cu.Provider != domain.ProviderLocal {
		t.Fatalf("unexpected current user: %+v", cu)
	}

	delete(users.byID, user.ID)
	gone, err := svc.CurrentUser(context.Background(), sess)
	if err != nil || gone != nil {
		t.Fatalf("expected nil for deleted account, got %+v %v", gone, err)
	}
}

func TestCurrentUser_ProviderSession(t *testing.T) {
	svc, _, _ := newAuthService()
	sess, err := svc.LoginWithProvider(context.Background(), domain.ProviderProfile{Provider: "google", Subject: "42", Name: "Diego"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	cu, err := svc.CurrentUser(context.Background(), sess)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if cu.Fullname != "Diego" || cu.Provider != "google" {
		t.Fatalf("unexpected current user: %+v", cu)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc, users, _ := newAuthService()

	if err := svc.EnsureAdmin(context.Background(), "Admin@Shop.test", "pw"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := svc.EnsureAdmin(context.Background(), "admin@shop.test", "pw"); err != nil {
		t.Fatalf("ensure admin twice: %v", err)
	}
	if len(users.byID) != 1 {
		t.Fatalf("expected a single admin, got %d users", len(users.byID))
	}
	sess, err := svc.Login(context.Background(), "admin@shop.test", "pw")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if !sess.IsAdmin() {
		t.Fatalf("expected admin session, got role %s", sess.Role)
	}
}
