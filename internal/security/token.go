package security

import (
	"errors"
	"fmt"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type TokenService interface {
	Issue(username string) (string, error)
	// Verify returns the username carried by a valid token.
	Verify(tokenString string) (string, error)
	TTL() time.Duration
}

type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg config.JWT, now func() time.Time) TokenService {
	if now == nil {
		now = time.Now
	}
	return &jwtService{
		secret: []byte(cfg.SecretKey),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenDuration,
		now:    now,
	}
}

func (s *jwtService) TTL() time.Duration {
	return s.ttl
}

func (s *jwtService) Issue(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Checking the signature algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", &apperrors.Error{
				Kind: apperrors.KindUnauthenticated,
				Code: apperrors.ErrInvalidToken.Code,
				Msg:  "Token has expired",
				Err:  err,
			}
		}
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}

	return claims.Subject, nil
}
