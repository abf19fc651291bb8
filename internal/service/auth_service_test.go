package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"testing"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// mockAuthRepo is a lightweight in-test mock for repository.Authorization.
type mockAuthRepo struct {
	CreateFn     func(u models.User) (int64, error)
	GetByEmailFn func(email string) (*models.User, error)

	created  []models.User
	getCalls []string
}

func (m *mockAuthRepo) Create(_ context.Context, u models.User) (int64, error) {
	m.created = append(m.created, u)
	return m.CreateFn(u)
}

func (m *mockAuthRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.getCalls = append(m.getCalls, email)
	if m.GetByEmailFn == nil {
		return nil, nil
	}
	return m.GetByEmailFn(email)
}

func newTestAuth(repo repository.Authorization) *AuthService {
	return NewAuthService(repo, NewCredentialService(bcrypt.MinCost), NewTokenManager(testSecret, time.Hour))
}

// --- Credential tests ---

func TestCredentialService_HashAndVerify(t *testing.T) {
	c := NewCredentialService(bcrypt.MinCost)

	hash, err := c.Hash("s3cr3t")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cr3t" {
		t.Fatalf("hash must differ from the plaintext")
	}
	if !c.Verify("s3cr3t", hash) {
		t.Fatalf("expected password to verify")
	}
	if c.Verify("S3cr3t", hash) {
		t.Fatalf("expected mismatch to return false")
	}
	if c.Verify("s3cr3t", "not-a-bcrypt-hash") {
		t.Fatalf("expected garbage hash to return false")
	}

	if _, err := c.Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestCredentialService_DefaultCost(t *testing.T) {
	c := NewCredentialService(0)
	hash, err := c.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != 10 {
		t.Fatalf("expected cost 10, got %d", cost)
	}
}

// --- Register tests ---

func TestAuthService_Register_Success(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(u models.User) (int64, error) { return 42, nil },
	}
	svc := newTestAuth(mock)

	res, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.test", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User != (models.PublicUser{ID: 42, Username: "alice", Email: "a@x.test"}) {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	if len(mock.created) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.created))
	}
	if got := mock.created[0].PasswordHash; got == "s3cr3t" || !svc.creds.Verify("s3cr3t", got) {
		t.Fatalf("stored hash does not verify with original password")
	}

	uid, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected token for user 42, got %d", uid)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	cases := []RegisterInput{
		{Email: "a@x.test", Password: "pw"},
		{Username: "a", Password: "pw"},
		{Username: "a", Email: "a@x.test"},
	}
	for i, in := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			mock := &mockAuthRepo{CreateFn: func(models.User) (int64, error) {
				t.Fatal("Create should not be called")
				return 0, nil
			}}
			_, err := newTestAuth(mock).Register(context.Background(), in)

			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Message != MsgRegisterFieldsRequired {
				t.Fatalf("expected %q, got %v", MsgRegisterFieldsRequired, err)
			}
			if len(mock.getCalls) != 0 {
				t.Fatalf("store must not be queried")
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mock := &mockAuthRepo{
		GetByEmailFn: func(string) (*models.User, error) { return &models.User{ID: 1}, nil },
		CreateFn: func(models.User) (int64, error) {
			t.Fatal("Create should not be called for an existing email")
			return 0, nil
		},
	}

	_, err := newTestAuth(mock).Register(context.Background(), RegisterInput{Username: "b", Email: "a@x.test", Password: "pw"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_Register_UniqueViolationOnInsert(t *testing.T) {
	mock := &mockAuthRepo{
		CreateFn: func(models.User) (int64, error) {
			return 0, fmt.Errorf("insert user: %w", repository.ErrAlreadyExists)
		},
	}

	_, err := newTestAuth(mock).Register(context.Background(), RegisterInput{Username: "taken", Email: "new@x.test", Password: "pw"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_Register_RepoError(t *testing.T) {
	mock := &mockAuthRepo{
		GetByEmailFn: func(string) (*models.User, error) { return nil, errors.New("db down") },
	}

	_, err := newTestAuth(mock).Register(context.Background(), RegisterInput{Username: "c", Email: "c@x.test", Password: "pw"})
	if err == nil || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
		t.Fatalf("expected unclassified repo error, got %v", err)
	}
}

// --- Login tests ---

func TestAuthService_Login(t *testing.T) {
	creds := NewCredentialService(bcrypt.MinCost)
	hash, err := creds.Hash("letmein")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	diana := &models.User{ID: 7, Username: "diana", Email: "d@x.test", PasswordHash: hash}

	tests := []struct {
		name    string
		in      LoginInput
		user    *models.User
		repoErr error
		wantErr error
	}{
		{name: "success", in: LoginInput{Email: "d@x.test", Password: "letmein"}, user: diana},
		{name: "wrong password", in: LoginInput{Email: "d@x.test", Password: "nope"}, user: diana, wantErr: ErrInvalidCredentials},
		{name: "unknown email", in: LoginInput{Email: "ghost@x.test", Password: "letmein"}, wantErr: ErrInvalidCredentials},
		{name: "missing password", in: LoginInput{Email: "d@x.test"}, wantErr: ErrValidation},
		{name: "missing email", in: LoginInput{Password: "letmein"}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAuthRepo{GetByEmailFn: func(string) (*models.User, error) { return tt.user, tt.repoErr }}
			svc := NewAuthService(mock, creds, NewTokenManager(testSecret, time.Hour))

			res, err := svc.Login(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if res.User.ID != 7 || res.User.Username != "diana" {
				t.Fatalf("unexpected user: %+v", res.User)
			}
			uid, err := svc.ParseToken(res.Token)
			if err != nil || uid != 7 {
				t.Fatalf("token should verify to 7, got %d (%v)", uid, err)
			}
		})
	}
}

// --- Token tests ---

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	if m.ttl != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", m.ttl)
	}

	token, err := m.Issue(99)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	uid, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if uid != 99 {
		t.Fatalf("expected user id 99, got %d", uid)
	}
}

func TestTokenManager_PayloadCarriesID(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	token, err := m.Issue(5)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["id"] != float64(5) {
		t.Fatalf("expected id claim 5, got %v", claims["id"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected exp claim")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, 2*time.Hour)
	issuedAt := time.Now().Add(-3 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	token, err := m.Issue(11)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("SignedString: %v", err)
		}
		return s
	}
	valid := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		UserID:           5,
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}

	tests := map[string]string{
		"malformed":      "not-a-jwt",
		"empty":          "",
		"other key":      sign(jwt.SigningMethodHS256, []byte("different-key"), valid),
		"rs256":          sign(jwt.SigningMethodRS256, privateKey, valid),
		"no expiry":      sign(jwt.SigningMethodHS256, []byte(testSecret), &Claims{UserID: 5}),
		"missing id":     sign(jwt.SigningMethodHS256, []byte(testSecret), &Claims{RegisteredClaims: valid.RegisteredClaims}),
		"payload tamper": sign(jwt.SigningMethodHS256, []byte(testSecret), valid) + "x",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
