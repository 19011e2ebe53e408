package ws

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
)

// tokenIssuer is stamped into issued tokens and required on verification.
const tokenIssuer = "seabattle"

// Claims is the player token payload. The subject carries the player id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 player tokens minted by the account service.
type TokenVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewTokenVerifier creates a verifier for the shared HMAC secret.
func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenVerifier{secret: []byte(secret), now: time.Now}, nil
}

// Issue mints a token for p that expires after ttl.
func (v *TokenVerifier) Issue(p match.Player, ttl time.Duration) (string, error) {
	if strings.TrimSpace(p.ID) == "" {
		return "", apperrors.New(apperrors.CodePlayerIDEmpty, "player id is required")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := v.now().UTC()
	claims := Claims{
		Username: p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses raw and returns the player it was issued to.
func (v *TokenVerifier) Verify(raw string) (match.Player, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return match.Player{}, apperrors.New(apperrors.CodeTokenInvalid, "token is required")
	}
	parsed := &Claims{}
	_, err := jwt.ParseWithClaims(raw, parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return match.Player{}, mapJWTError(err)
	}
	playerID := strings.TrimSpace(parsed.Subject)
	if playerID == "" {
		return match.Player{}, apperrors.New(apperrors.CodeTokenInvalid, "token subject is empty")
	}
	username := strings.TrimSpace(parsed.Username)
	if username == "" {
		username = playerID
	}
	return match.Player{ID: playerID, Username: username}, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "token alg is invalid", err)
	default:
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "token is invalid", err)
	}
}

// tokenFromRequest reads the bearer token from the Authorization header,
// falling back to the token query parameter browsers must use.
func tokenFromRequest(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		scheme, value, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	return r.URL.Query().Get("token")
}
