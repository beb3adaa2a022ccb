package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

// ErrInvalidCredential hides whether the email or the password was wrong.
var ErrInvalidCredential = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	repo        Repository
	tokens      *Tokens
	mailer      Mailer
	validate    *validator.Validate
	now         func() time.Time
	freshWindow time.Duration
	cost        int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.tokens.now = now
	}
}

func WithFreshWindow(d time.Duration) Option {
	return func(s *Service) { s.freshWindow = d }
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(repo Repository, tokens *Tokens, mailer Mailer, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		tokens:      tokens,
		mailer:      mailer,
		validate:    validator.New(),
		now:         time.Now,
		freshWindow: 5 * time.Minute,
		cost:        bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type SignUpParams struct {
	Email    string
	Name     string
	Password string
}

type CreateUserParams struct {
	SignUpParams
	Role identity.Role
}

// SignUp registers a client account and signs it in.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*Session, error) {
	u, err := s.register(ctx, params, identity.RoleClient)
	if err != nil {
		return nil, err
	}

	return s.session(u, s.now())
}

// CreateUser lets a manager open accounts of any role.
func (s *Service) CreateUser(ctx context.Context, caller identity.Caller, params CreateUserParams) (*User, error) {
	if !caller.IsManager() {
		return nil, fmt.Errorf("creating users: %w", apperr.ErrForbidden)
	}

	if !params.Role.Valid() {
		return nil, apperr.Invalid("role", "must be manager, seller or client")
	}

	u, err := s.register(ctx, params.SignUpParams, params.Role)
	if err != nil {
		return nil, err
	}

	slog.Info("user created", "user_id", u.ID, "role", u.Role, "by", caller.ID)

	return u, nil
}

func (s *Service) register(ctx context.Context, params SignUpParams, role identity.Role) (*User, error) {
	email, err := s.normalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "required")
	}

	hash, err := s.hash(params.Password)
	if err != nil {
		return nil, err
	}

	u := &User{Email: email, Name: name, Role: role, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredential
		}

		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}

	return s.session(u, s.now())
}

// Reauthenticate checks the password again and returns a session that counts
// as fresh for sensitive operations.
func (s *Service) Reauthenticate(ctx context.Context, caller identity.Caller, password string) (*Session, error) {
	u, err := s.repo.GetUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}

	return s.session(u, s.now())
}

func (s *Service) ChangePassword(ctx context.Context, caller identity.Caller, newPassword string) error {
	if !caller.Fresh(s.now(), s.freshWindow) {
		return fmt.Errorf("changing password: %w", apperr.ErrReauthRequired)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, caller.ID, hash)
}

// SendPasswordReset mails a reset link. Unknown addresses succeed silently.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}

		return err
	}

	token, _, err := s.tokens.Issue(u, PurposePasswordReset, s.now(), s.tokens.Stamp(u.PasswordHash))
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, u.Email, "Redefinição de senha", "Use este código para redefinir sua senha: "+token)
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Parse(token, PurposePasswordReset)
	if err != nil {
		return err
	}

	u, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return err
	}

	if claims.Stamp != s.tokens.Stamp(u.PasswordHash) {
		return fmt.Errorf("reset token already used: %w", apperr.ErrUnauthenticated)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	slog.Info("password reset", "user_id", u.ID)

	return nil
}

func (s *Service) SendEmailVerification(ctx context.Context, caller identity.Caller) error {
	u, err := s.repo.GetUser(ctx, caller.ID)
	if err != nil {
		return err
	}

	if u.EmailVerified {
		return nil
	}

	token, _, err := s.tokens.Issue(u, PurposeVerifyEmail, s.now(), "")
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, u.Email, "Confirme seu e-mail", "Use este código para confirmar seu e-mail: "+token)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token, PurposeVerifyEmail)
	if err != nil {
		return err
	}

	u, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return err
	}

	return s.repo.MarkEmailVerified(ctx, u.ID)
}

// Authenticate resolves a session token to the caller it was issued to.
func (s *Service) Authenticate(_ context.Context, token string) (identity.Caller, error) {
	claims, err := s.tokens.Parse(token, PurposeSession)
	if err != nil {
		return identity.Caller{}, err
	}

	return claims.Caller()
}

// Profile makes the service usable as the order user directory.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (identity.Profile, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return identity.Profile{}, err
	}

	return u.Profile(), nil
}

func (s *Service) userFromClaims(ctx context.Context, c *Claims) (*User, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject: %w", apperr.ErrUnauthenticated)
	}

	return s.repo.GetUser(ctx, id)
}

func (s *Service) session(u *User, authTime time.Time) (*Session, error) {
	token, exp, err := s.tokens.Issue(u, PurposeSession, authTime, "")
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", apperr.Invalid("email", "must be a valid address")
	}

	return email, nil
}

func (s *Service) hash(password string) (string, error) {
	if len([]rune(password)) < minPasswordLen {
		return "", apperr.Invalid("password", fmt.Sprintf("must have at least %d characters", minPasswordLen))
	}

	if len(password) > maxPasswordBytes {
		return "", apperr.Invalid("password", "too long")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(h), nil
}
