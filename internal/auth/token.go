package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/domain"
)

// ErrInvalidToken is the single failure reported for any token that cannot be trusted.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator resolves a bearer token to the applicant id it was issued for.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	clock    clock.Clock
}

// TokenOptions configures a TokenManager.
type TokenOptions struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(opts TokenOptions, clk clock.Clock) *TokenManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{
		secret:   []byte(opts.Secret),
		issuer:   opts.Issuer,
		audience: opts.Audience,
		ttl:      ttl,
		clock:    clk,
	}
}

// Claims describes JWT payload.
type Claims struct {
	ApplicantID string `json:"id"`
	Name        string `json:"name,omitempty"`
	Photo       string `json:"photo,omitempty"`
	jwt.RegisteredClaims
}

// Generate builds and signs a JWT for the applicant.
func (tm *TokenManager) Generate(applicant *domain.Applicant) (*domain.JwtResult, error) {
	now := tm.clock.Now()
	claims := &Claims{
		ApplicantID: applicant.ID,
		Name:        applicant.Name,
		Photo:       applicant.Photo,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Audience:  jwt.ClaimStrings{tm.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	return &domain.JwtResult{Type: domain.BearerScheme, Token: signed}, nil
}

// Authenticate verifies signature, issuer, audience and validity window and
// returns the applicant id. Every failure collapses to ErrInvalidToken.
func (tm *TokenManager) Authenticate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithAudience(tm.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.clock.Now),
	)
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ApplicantID == "" {
		return "", ErrInvalidToken
	}
	return claims.ApplicantID, nil
}
