package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
)

const issuerName = "pharmacie-api"

var ErrInvalidToken = errors.New("invalid token")

var _ interfaces.TokenIssuer = (*Issuer)(nil)

type tokenClaims struct {
	jwt.RegisteredClaims
	Role entities.Role `json:"role"`
	Name string        `json:"name"`
}

// Issuer signs HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(user entities.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: user.Role,
		Name: user.Name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (i *Issuer) Parse(token string) (interfaces.Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return interfaces.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return interfaces.Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return interfaces.Claims{UserID: claims.Subject, Role: claims.Role, Name: claims.Name}, nil
}
