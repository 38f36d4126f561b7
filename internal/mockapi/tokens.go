package mockapi

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are the claims of a mock API access token.
type AccessClaims struct {
	CompanyID  string   `json:"company,omitempty"`
	BranchIDs  []string `json:"branches,omitempty"`
	Generation int64    `json:"gen"`
	jwtlib.RegisteredClaims
}

// tokenIssuer signs and verifies HS256 access tokens. Bumping the
// generation invalidates every token issued before it.
type tokenIssuer struct {
	secret     []byte
	ttl        time.Duration
	generation atomic.Int64
}

func newTokenIssuer(secret string, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *tokenIssuer) issue(userID, companyID string, branchIDs []string) (string, error) {
	now := NowTimeFunc()
	claims := AccessClaims{
		CompanyID:  companyID,
		BranchIDs:  branchIDs,
		Generation: i.generation.Load(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

func (i *tokenIssuer) verify(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		return i.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil {
		return nil, err
	}
	if claims.Generation < i.generation.Load() {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

func (i *tokenIssuer) expireAll() {
	i.generation.Add(1)
}
