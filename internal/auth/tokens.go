package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/vanchuyen/driver-gateway/internal/model"
)

// accessRecord binds an opaque access token to the profile snapshot taken at
// issuance time.
type accessRecord struct {
	profile   model.Profile
	expiresAt time.Time
}

// refreshRecord binds an opaque refresh token to its subject.
type refreshRecord struct {
	driverID  int
	expiresAt time.Time
}

// TokenGrant is the result of a full token issuance.
type TokenGrant struct {
	AccessToken      string
	ExpiresIn        int
	RefreshToken     string
	RefreshExpiresIn int
}

// TokenStore issues and verifies opaque bearer and refresh tokens. Tokens
// carry no claims; validity is decided solely by membership in these maps
// and the recorded expiry. Expired entries are swept on every issuance and
// evicted on lookup.
type TokenStore struct {
	mu      sync.Mutex
	access  map[string]accessRecord
	refresh map[string]refreshRecord

	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenStore creates an empty token store with the given TTLs.
func NewTokenStore(accessTTL, refreshTTL time.Duration) *TokenStore {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 720 * time.Hour
	}
	return &TokenStore{
		access:     make(map[string]accessRecord),
		refresh:    make(map[string]refreshRecord),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue mints an access/refresh token pair bound to a snapshot of profile.
// The snapshot is a deep copy; mutating the live profile afterwards does not
// change what the access token resolves to.
func (ts *TokenStore) Issue(profile model.Profile) (TokenGrant, error) {
	accessToken, err := generateToken()
	if err != nil {
		return TokenGrant{}, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := generateToken()
	if err != nil {
		return TokenGrant{}, fmt.Errorf("generate refresh token: %w", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	ts.sweepLocked(now)

	ts.access[accessToken] = accessRecord{profile: profile.Clone(), expiresAt: now.Add(ts.accessTTL)}
	ts.refresh[refreshToken] = refreshRecord{driverID: profile.ID, expiresAt: now.Add(ts.refreshTTL)}

	return TokenGrant{
		AccessToken:      accessToken,
		ExpiresIn:        int(ts.accessTTL / time.Second),
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int(ts.refreshTTL / time.Second),
	}, nil
}

// IssueAccess mints a new access token only, for the refresh flow. The
// presented refresh token stays valid until its own expiry.
func (ts *TokenStore) IssueAccess(profile model.Profile) (token string, expiresIn int, err error) {
	token, err = generateToken()
	if err != nil {
		return "", 0, fmt.Errorf("generate access token: %w", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	ts.sweepLocked(now)
	ts.access[token] = accessRecord{profile: profile.Clone(), expiresAt: now.Add(ts.accessTTL)}
	return token, int(ts.accessTTL / time.Second), nil
}

// VerifyAccess resolves an access token to its profile snapshot. An expired
// token is evicted on this check; an unknown token and an expired one return
// distinct messages under the same code.
func (ts *TokenStore) VerifyAccess(token string) (model.Profile, *Error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	rec, ok := ts.access[token]
	if !ok {
		return model.Profile{}, newError(CodeInvalidToken, msgAccessInvalid)
	}
	if ts.now().After(rec.expiresAt) {
		delete(ts.access, token)
		return model.Profile{}, newError(CodeInvalidToken, msgAccessExpired)
	}
	return rec.profile.Clone(), nil
}

// VerifyRefresh resolves a refresh token to its subject id. Expired and
// unrecognized tokens fail with distinct codes.
func (ts *TokenStore) VerifyRefresh(token string) (driverID int, authErr *Error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	rec, ok := ts.refresh[token]
	if !ok {
		return 0, newError(CodeTokenRevoked, msgRefreshRevoked)
	}
	if ts.now().After(rec.expiresAt) {
		delete(ts.refresh, token)
		return 0, newError(CodeTokenExpired, msgRefreshExpired)
	}
	return rec.driverID, nil
}

// sweepLocked drops every expired entry from both maps. Callers hold ts.mu.
func (ts *TokenStore) sweepLocked(now time.Time) {
	for k, v := range ts.access {
		if now.After(v.expiresAt) {
			delete(ts.access, k)
		}
	}
	for k, v := range ts.refresh {
		if now.After(v.expiresAt) {
			delete(ts.refresh, k)
		}
	}
}

// generateToken returns a random Base64URL token with 256 bits of entropy.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
