package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/commerce/internal/core/domain"
)

// tokenClaims is the wire form of domain.Claims. The subject mirrors the
// user id for clients that read the registered claim.
type tokenClaims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, issuer string) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

func (s *TokenService) Issue(claims domain.Claims) (string, error) {
	now := s.now()
	tc := tokenClaims{
		ID:       claims.ID,
		Username: claims.Username,
		Role:     string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.ID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return t.SignedString(s.secret)
}

// Verify returns domain.ErrInvalidToken for any token that is malformed,
// signed with another key or algorithm, expired, or carries an unknown role.
func (s *TokenService) Verify(token string) (domain.Claims, error) {
	if token == "" {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	role, ok := domain.ParseRole(tc.Role)
	if !ok {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	id := tc.ID
	if id == 0 && tc.Subject != "" {
		if sub, err := strconv.ParseInt(tc.Subject, 10, 64); err == nil {
			id = sub
		}
	}
	return domain.Claims{ID: id, Username: tc.Username, Role: role}, nil
}
