package mockapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var errRefreshTokenInvalid = errors.New("invalid refresh token")

// storedRefreshToken is the server side metadata of an opaque refresh token.
type storedRefreshToken struct {
	Token     string
	UserID    string
	CompanyID string
	BranchIDs []string
	Iat       time.Time
}

// refreshTokens creates, validates and rotates opaque refresh tokens.
type refreshTokens struct {
	tokens map[string]*storedRefreshToken
	expiry time.Duration
	lock   sync.Mutex
}

func newRefreshTokens(expiry time.Duration) *refreshTokens {
	return &refreshTokens{
		tokens: make(map[string]*storedRefreshToken),
		expiry: expiry,
	}
}

func (m *refreshTokens) create(userID, companyID string, branchIDs []string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	m.lock.Lock()
	defer m.lock.Unlock()
	m.tokens[tokenStr] = &storedRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		CompanyID: companyID,
		BranchIDs: branchIDs,
		Iat:       NowTimeFunc(),
	}
	return tokenStr, nil
}

// use validates token and, when rotate is set, replaces it with a new one.
// It returns the metadata and the token the client should hold afterwards.
func (m *refreshTokens) use(token string, rotate bool) (*storedRefreshToken, string, error) {
	m.lock.Lock()
	rt, ok := m.tokens[token]
	if !ok {
		m.lock.Unlock()
		return nil, "", errRefreshTokenInvalid
	}
	if NowTimeFunc().Sub(rt.Iat) > m.expiry {
		delete(m.tokens, token)
		m.lock.Unlock()
		return nil, "", fmt.Errorf("%w: expired", errRefreshTokenInvalid)
	}
	if !rotate {
		m.lock.Unlock()
		return rt, token, nil
	}
	delete(m.tokens, token)
	m.lock.Unlock()

	next, err := m.create(rt.UserID, rt.CompanyID, rt.BranchIDs)
	if err != nil {
		return nil, "", err
	}
	return rt, next, nil
}

func (m *refreshTokens) revokeAll() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.tokens = make(map[string]*storedRefreshToken)
}
