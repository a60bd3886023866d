/*
Package auth issues and checks credentials for the leave API.

PURPOSE:
  - token.go:    signs HS256 access tokens carrying sub, email and role
  - password.go: bcrypt hashing
  - service.go:  register, login and profile on top of leave.Service

Tokens are signed here with golang-jwt and verified by the HTTP layer
through the jwtauth middleware returned by Issuer.JWTAuth; both sides use
the same secret.

USAGE:
  issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
  token, expires, err := issuer.Issue(employee)
  r.Use(jwtauth.Verifier(issuer.JWTAuth()))
*/
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/warp/leave-engine/leave"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the access token payload. Subject is the employee ID.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs access tokens and hands out the matching verifier.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	ja     *jwtauth.JWTAuth

	Now func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		ja:     jwtauth.New("HS256", []byte(secret), nil, jwxjwt.WithAcceptableSkew(30*time.Second)),
		Now:    time.Now,
	}
}

// JWTAuth is the verifier for jwtauth.Verifier.
func (i *Issuer) JWTAuth() *jwtauth.JWTAuth {
	return i.ja
}

// Issue signs a token for e and returns it with its expiry.
func (i *Issuer) Issue(e leave.Employee) (string, time.Time, error) {
	now := i.Now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Email: e.Email,
		Role:  string(e.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(e.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ActorFromClaims reads a leave.Actor out of a jwtauth claims map.
func ActorFromClaims(claims map[string]interface{}) (leave.Actor, error) {
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !leave.Role(role).Valid() {
		return leave.Actor{}, ErrInvalidToken
	}
	return leave.Actor{ID: leave.EmployeeID(sub), Role: leave.Role(role)}, nil
}
