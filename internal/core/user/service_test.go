package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeUserRepo struct {
	users    map[string]*User
	sequence int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *User) (*User, error) {
	if _, ok := r.users[u.Email]; ok {
		return nil, ErrEmailAlreadyExists
	}
	clone := *u
	r.sequence++
	clone.ID = fmt.Sprintf("user-%d", r.sequence)
	r.users[clone.Email] = &clone
	copied := clone
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC)
	svc := NewService(newFakeUserRepo(), &stubClock{now: now})

	created, err := svc.RegisterUser(context.Background(), RegisterUserInput{
		Email: "Hana@Example.com",
		Name:  "  Hana Sato  ",
	})
	if err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}

	if created.Email != "hana@example.com" {
		t.Errorf("expected lowercased email, got %s", created.Email)
	}
	if created.Name != "Hana Sato" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
	if created.Status != StatusActive {
		t.Errorf("expected active status, got %s", created.Status)
	}
	if !created.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, created.CreatedAt)
	}
}

func TestRegisterUser_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeUserRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterUserInput
		want  error
	}{
		{name: "empty email", input: RegisterUserInput{Email: "", Name: "Hana"}, want: ErrInvalidEmail},
		{name: "malformed email", input: RegisterUserInput{Email: "not-an-email", Name: "Hana"}, want: ErrInvalidEmail},
		{name: "email with display name", input: RegisterUserInput{Email: "Hana <hana@example.com>", Name: "Hana"}, want: ErrInvalidEmail},
		{name: "empty name", input: RegisterUserInput{Email: "hana@example.com", Name: "   "}, want: ErrInvalidName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := svc.RegisterUser(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeUserRepo(), nil)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterUserInput{Email: "hana@example.com", Name: "Hana"}); err != nil {
		t.Fatalf("first RegisterUser returned error: %v", err)
	}

	if _, err := svc.RegisterUser(ctx, RegisterUserInput{Email: "hana@example.com", Name: "Hana"}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeUserRepo(), nil)
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterUserInput{Email: "hana@example.com", Name: "Hana"}); err != nil {
		t.Fatalf("RegisterUser returned error: %v", err)
	}

	found, err := svc.GetUserByEmail(ctx, " Hana@example.com ")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if found.Name != "Hana" {
		t.Errorf("unexpected user: %+v", found)
	}

	if _, err := svc.GetUserByEmail(ctx, "taro@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
