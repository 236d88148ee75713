// Package auth issues and validates the bearer tokens used by the HTTP API.
// Workers authenticate with their PIN; the resulting JWT carries their
// worker id and role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"previnet/internal/platform/middleware"
	"previnet/internal/worker"
	"previnet/pkg/platform/sentinel"
)

const (
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Claims struct {
	WorkerID string `json:"workerId,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	workers    worker.Store
	signingKey []byte
	tokenTTL   time.Duration
	clock      func() time.Time
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func NewService(workers worker.Store, signingKey []byte, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		workers:    workers,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginWithPIN exchanges a worker PIN for a signed token. Disabled workers
// may still log in: a new worker has to sign their enrollment before the
// enabled flag flips.
func (s *Service) LoginWithPIN(ctx context.Context, pin string) (string, *worker.Worker, error) {
	w, err := s.workers.FindByPIN(ctx, pin)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("lookup worker by pin: %w", err)
	}
	token, err := s.issue(w.ID, role(w))
	if err != nil {
		return "", nil, err
	}
	return token, w, nil
}

func (s *Service) issue(workerID, role string) (string, error) {
	now := s.clock()
	claims := Claims{
		WorkerID: workerID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   workerID,
			Issuer:    "previnet",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken implements middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithIssuer("previnet"),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &middleware.TokenClaims{
		UserID:   claims.Subject,
		WorkerID: claims.WorkerID,
		Role:     claims.Role,
	}, nil
}

func role(w *worker.Worker) string {
	if w.Role == RoleAdmin {
		return RoleAdmin
	}
	return RoleWorker
}
