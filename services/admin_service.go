package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

var (
	ErrAdminDisabled      = errors.New("admin access is not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	errInvalidSigningAlg  = errors.New("unexpected signing method")
)

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminService guards the read-only operator API with a bcrypt password and
// short-lived HS256 tokens.
type AdminService struct {
	passwordHash []byte
	secretKey    []byte
	maxAge       time.Duration
	now          func() time.Time
}

func NewAdminService(passwordHash, secretKey string, maxAge time.Duration) *AdminService {
	return &AdminService{
		passwordHash: []byte(passwordHash),
		secretKey:    []byte(secretKey),
		maxAge:       maxAge,
		now:          time.Now,
	}
}

func (s *AdminService) Enabled() bool {
	return len(s.passwordHash) > 0 && len(s.secretKey) > 0
}

// Login checks the operator password and returns a signed token.
func (s *AdminService) Login(password string) (string, error) {
	if !s.Enabled() {
		return "", ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.Generate(s.now())
}

func (s *AdminService) Generate(now time.Time) (string, error) {
	claims := adminClaims{
		Role: adminSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// Verify returns the token's role if it is valid.
func (s *AdminService) Verify(tokenString string) (string, error) {
	if !s.Enabled() {
		return "", ErrAdminDisabled
	}
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSigningAlg
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid || claims.Role != adminSubject {
		return "", ErrInvalidToken
	}
	return claims.Role, nil
}
