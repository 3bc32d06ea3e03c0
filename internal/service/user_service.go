package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kanbanlab/taskboard/internal/domain"
	"github.com/kanbanlab/taskboard/internal/service/auth"
	"github.com/kanbanlab/taskboard/internal/store"
)

// UserService provides account registration and credential verification.
type UserService interface {
	// Register creates a new account with a hashed password.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Authenticate verifies an email/password pair and returns the user.
	// Returns auth.ErrInvalidCredentials when either part is wrong.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// UserServiceError wraps errors from the user service with context.
type UserServiceError struct {
	// Operation is the operation that failed (e.g., "register")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError.
// It returns known sentinel errors directly without wrapping.
func NewUserServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isPassthrough(err) || errors.Is(err, auth.ErrInvalidCredentials) {
		return err
	}
	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "users cannot be nil"}
	}
	if hasher == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "hasher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:  users,
		hasher: hasher,
		logger: logger.With("component", "user_service"),
	}, nil
}

// Register validates the plaintext password through the domain rules, then
// stores only its hash.
func (s *userServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, NewUserServiceError("register", "invalid user", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, NewUserServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, NewUserServiceError("register", "failed to save user", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID)
	return user, nil
}

// Authenticate looks up the account and compares the password hash. A
// missing account and a wrong password are indistinguishable to callers.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, NewUserServiceError("authenticate", "failed to load user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, NewUserServiceError("get_user", "failed to load user", err)
	}
	return user, nil
}
