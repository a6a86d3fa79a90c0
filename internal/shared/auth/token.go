package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/radieske/pick-control/internal/shared/errs"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session é a sessão explícita de um usuário autenticado.
// Vem do token verificado e viaja no contexto da requisição.
type Session struct {
	UserID    string
	Name      string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin indica se a sessão enxerga picks de todos os usuários
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity é o que o auth-service coloca dentro do token
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// Issuer emite tokens HS256
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue assina um token novo para a identidade; cada token tem jti próprio para revogação
func (i *Issuer) Issue(id Identity) (string, Session, error) {
	now := i.now()
	s := Session{
		UserID:    id.UserID,
		Name:      id.Name,
		Email:     id.Email,
		Role:      id.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl),
	}
	if s.Role == "" {
		s.Role = RoleUser
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:  s.Name,
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ID:        s.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, s, nil
}

// Verifier valida assinatura, expiração e revogação
type Verifier struct {
	secret  []byte
	revoked Revocations
}

// NewVerifier aceita revoked nil (sem checagem de logout)
func NewVerifier(secret string, revoked Revocations) *Verifier {
	return &Verifier{secret: []byte(secret), revoked: revoked}
}

// Verify devolve a sessão do token ou um erro que embrulha errs.ErrUnauthorized
func (v *Verifier) Verify(ctx context.Context, raw string) (Session, error) {
	if raw == "" {
		return Session{}, fmt.Errorf("missing token: %w", errs.ErrUnauthorized)
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, fmt.Errorf("token expired: %w", errs.ErrUnauthorized)
		}
		return Session{}, fmt.Errorf("invalid token: %w", errs.ErrUnauthorized)
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("token without subject: %w", errs.ErrUnauthorized)
	}

	s := Session{
		UserID:  c.Subject,
		Name:    c.Name,
		Email:   c.Email,
		Role:    c.Role,
		TokenID: c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}

	if v.revoked != nil && s.TokenID != "" {
		revoked, err := v.revoked.IsRevoked(ctx, s.TokenID)
		if err != nil {
			return Session{}, errs.Unavailable("check revocation", err)
		}
		if revoked {
			return Session{}, fmt.Errorf("token revoked: %w", errs.ErrUnauthorized)
		}
	}
	return s, nil
}
