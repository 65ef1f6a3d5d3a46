package authn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// ErrEmptySecret is returned when a verifier is built without a signing secret
var ErrEmptySecret = errors.New("jwt secret is empty")

// defaultSkew tolerates small clock differences between issuer and server
const defaultSkew = 30 * time.Second

// Verifier checks HS256 access tokens signed with the project JWT secret
type Verifier struct {
	secret []byte
	issuer string
	skew   time.Duration
}

// Option configures a Verifier
type Option func(*Verifier)

// WithIssuer requires the iss claim to equal issuer
func WithIssuer(issuer string) Option {
	return func(v *Verifier) { v.issuer = strings.TrimSpace(issuer) }
}

// WithSkew overrides the accepted clock skew for exp/nbf/iat
func WithSkew(skew time.Duration) Option {
	return func(v *Verifier) { v.skew = skew }
}

// NewVerifier creates a verifier for the given shared secret
func NewVerifier(secret string, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	v := &Verifier{secret: []byte(secret), skew: defaultSkew}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify parses tokenString, checks its signature and time claims, and
// extracts the claims the server reads.
func (v *Verifier) Verify(tokenString string) (*models.JWTClaims, error) {
	parseOpts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(v.skew),
	}
	if v.issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), parseOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	if token.Subject() == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
	}
	if exp := token.Expiration(); !exp.IsZero() {
		claims.Exp = exp.Unix()
	}
	if iat := token.IssuedAt(); !iat.IsZero() {
		claims.Iat = iat.Unix()
	}
	claims.Role = stringClaim(token, "role")
	claims.Email = stringClaim(token, "email")

	return claims, nil
}

func stringClaim(token jwt.Token, name string) string {
	raw, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}
