package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warp/leave-engine/leave"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least %d characters", leave.ErrInvalidInput, MinPasswordLength)
)

// Service handles registration and login.
type Service struct {
	Leave  *leave.Service
	Issuer *Issuer
}

func NewService(leaveSvc *leave.Service, issuer *Issuer) *Service {
	return &Service{Leave: leaveSvc, Issuer: issuer}
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Role     leave.Role
}

// Session is the result of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Employee  leave.Employee
}

// Register creates an employee with default balances and logs them in.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Session, error) {
	if len(cmd.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	e, err := s.Leave.RegisterEmployee(ctx, leave.NewEmployee{
		Name:         strings.TrimSpace(cmd.Name),
		Email:        cmd.Email,
		PasswordHash: hash,
		Role:         cmd.Role,
	})
	if err != nil {
		return nil, err
	}
	return s.session(*e)
}

// Login checks the password and issues a token. Unknown emails and wrong
// passwords return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	e, err := s.Leave.Store.GetEmployeeByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, leave.ErrEmployeeNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if e.PasswordHash == "" || CheckPassword(e.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(*e)
}

// Profile returns the caller's own employee record.
func (s *Service) Profile(ctx context.Context, actor leave.Actor) (*leave.Employee, error) {
	return s.Leave.GetEmployee(ctx, actor, actor.ID)
}

func (s *Service) session(e leave.Employee) (*Session, error) {
	token, expires, err := s.Issuer.Issue(e)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Employee: e}, nil
}
