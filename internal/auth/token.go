// Package auth issues and verifies the signed session tokens used by the
// two authentication realms. User and staff tokens are signed with
// independent secrets and carry a realm claim, so a token from one realm
// can never satisfy the other realm's gate.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Realm identifies an authentication scope.
type Realm string

const (
	RealmUser  Realm = "user"
	RealmStaff Realm = "staff"
)

const issuer = "musicplatform"

// ErrInvalidToken covers malformed, mis-signed, expired, and wrong-realm tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the signed contents of a session token.
type Claims struct {
	Realm Realm `json:"realm"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens for one realm.
type Manager struct {
	secret []byte
	realm  Realm
	expiry time.Duration
}

// NewManager creates a token manager for the given realm.
func NewManager(secret string, realm Realm, expiry time.Duration) *Manager {
	if expiry == 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		realm:  realm,
		expiry: expiry,
	}
}

// Issue signs a new token for the given account ID. The returned expiry is
// recorded alongside the session row so revocation and expiry agree.
func (m *Manager) Issue(accountID int64) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(m.expiry)

	claims := &Claims{
		Realm: m.realm,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", accountID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the signature, expiry, and realm of a token.
func (m *Manager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Realm != m.realm {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
