package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/clock"
	"github.com/farellandr/ticketbook/internal/models"
	"github.com/farellandr/ticketbook/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 30 * time.Minute
	tokenTypeBearer = "bearer"
	maxPasswordLen  = 72
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Claims is the payload of an access token. The subject is the user id.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Principal is the caller resolved from a valid access token.
type Principal struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}

type IdentityService struct {
	users    userStore
	clock    clock.Clock
	secret   []byte
	tokenTTL time.Duration
	hashCost int
	validate *validator.Validate

	// compared against when the email is unknown so a failed login costs
	// the same either way
	dummyHash []byte
}

type IdentityServiceOption func(*IdentityService)

func WithTokenTTL(d time.Duration) IdentityServiceOption {
	return func(s *IdentityService) {
		if d > 0 {
			s.tokenTTL = d
		}
	}
}

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) IdentityServiceOption {
	return func(s *IdentityService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

func NewIdentityService(users userStore, clk clock.Clock, secret string, opts ...IdentityServiceOption) (*IdentityService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	svc := &IdentityService{
		users:    users,
		clock:    clk,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		hashCost: bcrypt.DefaultCost,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), svc.hashCost)
	if err != nil {
		return nil, err
	}
	svc.dummyHash = dummy
	return svc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *IdentityService) Register(ctx context.Context, email, password string, isAdmin bool) (*models.User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if len(password) > maxPasswordLen {
		return nil, ErrPasswordTooLong
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Persistence("Could not register user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, apperror.Persistence("Could not register user", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, apperror.Persistence("Could not register user", err)
	}

	log.Printf("user %s registered (admin=%t)", user.ID, user.IsAdmin)
	return user, nil
}

// Authenticate checks the credentials and issues an access token. Unknown
// emails and wrong passwords fail with the same error.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Persistence("Could not authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.Persistence("Could not issue token", err)
	}

	return &Token{AccessToken: signed, TokenType: tokenTypeBearer}, nil
}

// Authorize resolves a bearer token to its user. The admin flag is read
// from storage, not from the token.
func (s *IdentityService) Authorize(ctx context.Context, token string) (*Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, apperror.Persistence("Could not validate credentials", err)
	}

	return &Principal{UserID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin}, nil
}

func (s *IdentityService) CurrentUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, apperror.Persistence("Could not load user", err)
	}
	return user, nil
}

// EnsureAdmin registers an administrator with the given credentials unless
// the email is already taken.
func (s *IdentityService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.Register(ctx, email, password, true)
	if errors.Is(err, ErrDuplicateEmail) {
		return nil
	}
	return err
}
