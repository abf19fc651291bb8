package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is used when the configured TTL is not positive.
const DefaultTokenTTL = 2 * time.Hour

var errEmptyPassword = errors.New("password is empty")

// CredentialService hashes and verifies passwords with bcrypt.
type CredentialService struct {
	cost int
}

// NewCredentialService uses bcrypt.DefaultCost (10) when cost is out of range.
func NewCredentialService(cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{cost: cost}
}

// Hash returns a salted bcrypt hash. Fails only on empty input.
func (c *CredentialService) Hash(password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
func (c *CredentialService) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims defines JWT claims. The payload carries the user id as "id".
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID expiring after the configured TTL.
func (m *TokenManager) Issue(userID int64) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
// Every failure wraps ErrInvalidToken.
func (m *TokenManager) Verify(accessToken string) (int64, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// AuthService handles registration and login.
type AuthService struct {
	authRepo repository.Authorization
	creds    *CredentialService
	tokens   *TokenManager
}

func NewAuthService(repo repository.Authorization, creds *CredentialService, tokens *TokenManager) *AuthService {
	return &AuthService{authRepo: repo, creds: creds, tokens: tokens}
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return AuthResult{}, invalid(MsgRegisterFieldsRequired)
	}

	existing, err := s.authRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if existing != nil {
		return AuthResult{}, ErrConflict
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	u := models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	id, err := s.authRepo.Create(ctx, u)
	if err != nil {
		// username taken, or the email raced in after the lookup
		if errors.Is(err, repository.ErrAlreadyExists) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, err
	}
	u.ID = id

	return s.result(u)
}

// Login verifies credentials. Unknown email and wrong password are the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	if in.Email == "" || in.Password == "" {
		return AuthResult{}, invalid(MsgLoginFieldsRequired)
	}

	u, err := s.authRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if u == nil || !s.creds.Verify(in.Password, u.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.result(*u)
}

// ParseToken returns the user id carried by a valid token.
func (s *AuthService) ParseToken(accessToken string) (int64, error) {
	return s.tokens.Verify(accessToken)
}

func (s *AuthService) result(u models.User) (AuthResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: u.Public()}, nil
}
