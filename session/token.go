package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haasonsaas/agentcore"
)

// ErrResumeTokenInvalid is returned by TokenIssuer.Verify for any malformed,
// unsigned, or expired token. It is agentcore.ErrInvalidResumeToken, so
// errors.Is matches either name.
var ErrResumeTokenInvalid = agentcore.ErrInvalidResumeToken

// resumeClaims embeds the session identifier a resumption token carries.
// Expiry is enforced by jwt.RegisteredClaims' exp field.
type resumeClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies opaque resumption tokens a client presents
// to reattach to a session (e.g. across a process restart) without exposing
// the session's transcript directly. Grounded on the original
// implementation's auth/session_token.py, which signs the same claim shape
// with PyJWT.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenIssuer returns a TokenIssuer that signs with signingKey and mints
// tokens valid for ttl. ttl <= 0 defaults to one hour.
func NewTokenIssuer(signingKey []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{signingKey: signingKey, ttl: ttl}
}

// Issue mints a resumption token for sessionID, signed and expiring ttl
// from now.
func (i *TokenIssuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := resumeClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("session: sign resume token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the session ID it was issued for, failing
// with ErrResumeTokenInvalid if the signature, claim shape, or expiry does
// not check out.
func (i *TokenIssuer) Verify(raw string) (string, error) {
	var claims resumeClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrResumeTokenInvalid, err)
	}
	if claims.SessionID == "" {
		return "", fmt.Errorf("%w: missing session id claim", ErrResumeTokenInvalid)
	}
	return claims.SessionID, nil
}
