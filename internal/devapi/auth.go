package devapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaldal/admin-console/internal/core/domain"
)

var errInactive = errors.New("account is inactive")

type account struct {
	user         domain.User
	passwordHash []byte
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 tokens for the seeded accounts.
// Logged out tokens are remembered until they expire.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	byPhone  map[string]*account
	byID     map[int64]*account
	revoked  map[string]time.Time
	nextUser int64
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		byPhone: make(map[string]*account),
		byID:    make(map[int64]*account),
		revoked: make(map[string]time.Time),
	}
}

// AddAccount registers u with password. A zero ID is assigned.
func (s *AuthService) AddAccount(u domain.User, password string) (*domain.User, error) {
	if u.Phone == "" || password == "" || u.Role == "" {
		return nil, domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byPhone[u.Phone]; exists {
		return nil, fmt.Errorf("phone %s already registered", u.Phone)
	}
	if u.ID == 0 {
		s.nextUser++
		u.ID = s.nextUser
	} else if u.ID > s.nextUser {
		s.nextUser = u.ID
	}
	acc := &account{user: u, passwordHash: hash}
	s.byPhone[u.Phone] = acc
	s.byID[u.ID] = acc
	out := u
	return &out, nil
}

func (s *AuthService) Login(phone, password string) (string, *domain.User, error) {
	if phone == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	s.mu.RLock()
	acc, ok := s.byPhone[phone]
	s.mu.RUnlock()
	if !ok {
		return "", nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !acc.user.IsActive {
		return "", nil, errInactive
	}

	token, err := s.generateToken(&acc.user)
	if err != nil {
		return "", nil, err
	}
	u := acc.user
	return token, &u, nil
}

func (s *AuthService) generateToken(u *domain.User) (string, error) {
	now := s.now()
	c := claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

// Verify checks signature, expiry and revocation and returns the account's
// current user with the token id.
func (s *AuthService) Verify(token string) (*domain.User, *claims, error) {
	var c claims
	tkn, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, nil, domain.ErrUnauthorized
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, nil, domain.ErrUnauthorized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, gone := s.revoked[c.ID]; gone {
		return nil, nil, domain.ErrUnauthorized
	}
	acc, ok := s.byID[id]
	if !ok || !acc.user.IsActive {
		return nil, nil, domain.ErrUnauthorized
	}
	u := acc.user
	return &u, &c, nil
}

// Revoke invalidates the token described by c.
func (s *AuthService) Revoke(c *claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for jti, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, jti)
		}
	}
	exp := now.Add(s.ttl)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	s.revoked[c.ID] = exp
}

func (s *AuthService) ChangePassword(userID int64, current, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc.passwordHash = hash
	return nil
}
