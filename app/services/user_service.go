package services

import (
	"errors"
	"fmt"
	"strings"

	"feedgram/app/models"
	"feedgram/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// UserService registers and authenticates accounts.
type UserService struct {
	userRepo repositories.UserRepository
	hashCost int
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, hashCost: bcrypt.DefaultCost}
}

// SetHashCost changes the bcrypt cost used for new passwords.
func (s *UserService) SetHashCost(cost int) {
	s.hashCost = cost
}

// Register creates an account. A taken username yields repositories.ErrDuplicate.
func (s *UserService) Register(username, password string) (*models.User, error) {
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
	}
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid user: %v", ErrInvalid, err)
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the password of username.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(id int) (*models.User, error) {
	return s.userRepo.GetByID(id)
}
