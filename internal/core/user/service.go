package user

import (
	"context"
	"net/mail"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Service はユーザーに関するユースケースをまとめます。
// 勤怠エンジンから見た「アイデンティティサービス」に相当します。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	RegisterUser(ctx context.Context, in RegisterUserInput) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// RegisterUserInput はユーザー登録時の入力です。
type RegisterUserInput struct {
	Email string
	Name  string
}

// RegisterUser は新しいユーザーを登録します。
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	now := s.clock.Now()
	u := &User{
		Email:     email,
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetUserByEmail はメールアドレスでユーザーを取得します。
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByEmail(ctx, normalized)
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(trimmed), nil
}
