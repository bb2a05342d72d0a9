package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stocksy/internal/model"
	"stocksy/internal/repository"
	"stocksy/pkg/jwt"
	"stocksy/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// RegisterCommand is the payload for creating an account.
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResponse carries the session token returned on login.
type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Register(cmd *RegisterCommand) (*model.UserResponse, error)
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, log: log}
}

func (s *authService) Register(cmd *RegisterCommand) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(cmd); len(errs) > 0 {
		return nil, &ValidationError{Messages: validator.Messages(errs)}
	}

	if existing, _ := s.userRepo.FindByEmail(cmd.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	user := &model.User{Email: cmd.Email}
	if err := user.SetPassword(cmd.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Rotate the token version so earlier sessions stop validating.
	user.TokenVersion = uuid.New().String()
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.New("failed to update session")
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	user.TokenVersion = uuid.New().String()

	return s.userRepo.Update(user)
}
