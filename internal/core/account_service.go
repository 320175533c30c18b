package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance.service/internal/auth"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *model.User) (string, error)
}

// RegisterInput is the payload of a sign-up.
type RegisterInput struct {
	Name       string     `json:"name" validate:"required,max=100"`
	Email      string     `json:"email" validate:"required,email"`
	Password   string     `json:"password" validate:"required,min=6,max=72"`
	Role       model.Role `json:"role" validate:"omitempty,oneof=employee manager"`
	EmployeeID string     `json:"employeeId" validate:"required,max=50"`
	Department string     `json:"department" validate:"max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by a successful sign-up or sign-in.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AccountService registers and authenticates users.
type AccountService struct {
	users    repository.UserRepository
	tokens   TokenIssuer
	validate *validator.Validate
	clock    Clock
}

func NewAccountService(users repository.UserRepository, tokens TokenIssuer, clock Clock) *AccountService {
	if clock == nil {
		clock = realClock{}
	}
	return &AccountService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		clock:    clock,
	}
}

// Register creates a user with a hashed password and signs them in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Department = strings.TrimSpace(in.Department)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Role == "" {
		in.Role = model.RoleEmployee
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		EmployeeID:   in.EmployeeID,
		Department:   in.Department,
		CreatedAt:    s.clock.Now().Truncate(time.Microsecond),
	})
	if err != nil {
		return nil, wrapInternal("failed to create user", err)
	}

	log.Ctx(ctx).Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("User registered")
	return s.signIn(created)
}

// Login checks the credentials and returns a fresh token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, wrapInternal("failed to find user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		log.Ctx(ctx).Warn().Str("user_id", u.ID).Msg("Login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	return s.signIn(u)
}

// Me returns the profile of the authenticated user.
func (s *AccountService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapInternal("failed to find user", err)
	}
	return u, nil
}

func (s *AccountService) signIn(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

// validationError flattens validator failures into a single invalid-input error.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", model.ErrInvalidInput, strings.Join(fields, ", "))
}
