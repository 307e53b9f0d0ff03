package service

import (
	"context"
	"errors"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/internal/util"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}
