package taskapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "task-api"

var (
	errTokenRevoked = errors.New("token revoked")
	errTokenSubject = errors.New("token subject invalid")
)

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenAuthority issues and verifies HS256 access tokens and tracks
// revocations by token ID.
type tokenAuthority struct {
	mu      sync.RWMutex
	key     []byte
	ttl     time.Duration
	revoked map[string]struct{}
	now     func() time.Time
}

func newTokenAuthority(key []byte, ttl time.Duration) *tokenAuthority {
	return &tokenAuthority{
		key:     key,
		ttl:     ttl,
		revoked: make(map[string]struct{}),
		now:     time.Now,
	}
}

func (a *tokenAuthority) issue(u *account) (string, error) {
	now := a.now()
	claims := accessClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	a.mu.RLock()
	key := a.key
	a.mu.RUnlock()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// verify returns the account id carried by a valid, unrevoked token.
func (a *tokenAuthority) verify(raw string) (int64, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
	)
	token, err := parser.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (any, error) {
		a.mu.RLock()
		defer a.mu.RUnlock()
		return a.key, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}

	a.mu.RLock()
	_, revoked := a.revoked[claims.ID]
	a.mu.RUnlock()
	if revoked {
		return 0, errTokenRevoked
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errTokenSubject, err)
	}
	return id, nil
}

// revoke blacklists the token ID of raw. Signature and expiry are not
// checked so expired tokens can be revoked too.
func (a *tokenAuthority) revoke(raw string) error {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return err
	}
	if claims.ID == "" {
		return jwt.ErrTokenInvalidId
	}
	a.mu.Lock()
	a.revoked[claims.ID] = struct{}{}
	a.mu.Unlock()
	return nil
}

// rotate replaces the signing key, invalidating every issued token.
func (a *tokenAuthority) rotate(key []byte) {
	a.mu.Lock()
	a.key = key
	a.mu.Unlock()
}
