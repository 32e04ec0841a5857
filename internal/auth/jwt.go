package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/healthpilot/internal/model"
)

// Claims represents the web session claims. Access holds the backend bearer
// token, sealed so the cookie never carries it readable.
type Claims struct {
	Username string `json:"username"`
	Access   string `json:"access"`
	jwt.RegisteredClaims
}

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// TokenExpiry is the default session lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// GenerateToken creates a session JWT for a user with a unique JTI.
// accessToken is the bearer token issued by the backend.
func GenerateToken(secret, username, accessToken string) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	sealed, err := Seal(KeyFromSecret(secret), accessToken)
	if err != nil {
		return "", fmt.Errorf("sealing access token: %w", err)
	}

	expiry := time.Now().Add(TokenExpiry)
	if backendExp, ok := BackendExpiry(accessToken); ok && backendExp.Before(expiry) {
		expiry = backendExp
	}

	claims := Claims{
		Username: username,
		Access:   sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// AccessToken unseals the backend bearer token carried by the claims.
func AccessToken(secret string, claims *Claims) (string, error) {
	return Unseal(KeyFromSecret(secret), claims.Access)
}

// Session rebuilds the backend session carried by the claims.
func Session(secret string, claims *Claims) (*model.Session, error) {
	token, err := AccessToken(secret, claims)
	if err != nil {
		return nil, err
	}
	return &model.Session{Username: claims.Username, AccessToken: token}, nil
}

// BackendExpiry reads the exp claim of a backend-issued JWT without verifying
// its signature; the client never holds the backend's key. ok is false when
// the token is not a JWT or carries no expiry.
func BackendExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// BackendTokenExpired reports whether a backend token carries an expiry in
// the past. Tokens without an expiry never expire client side.
func BackendTokenExpired(token string, now time.Time) bool {
	exp, ok := BackendExpiry(token)
	return ok && !now.Before(exp)
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
