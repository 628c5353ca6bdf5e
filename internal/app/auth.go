// internal/app/auth.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"

	tokenTTL      = 24 * time.Hour
	revokedKeyTpl = "revoked:%s" // revoked:${jti}
)

// Claims carries the authenticated identity: subject is the internal row id,
// plus email and role for downstream authorization.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenRevoker keeps the blacklist of revoked token ids. Entries expire on
// their own once the token itself would no longer verify.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Close() error
}

// Auth issues and verifies HS256 bearer tokens and checks credentials.
// When a revoker is configured, logout revokes tokens by jti for their
// remaining lifetime; without one, logout is a no-op.
type Auth struct {
	secret     []byte
	bcryptCost int
	revoker    TokenRevoker
}

func NewAuth(config *Config) (*Auth, error) {
	a := &Auth{
		secret:     []byte(config.Auth.JWTSecret),
		bcryptCost: config.Auth.BcryptCost,
	}

	if config.Auth.RedisURL == "" {
		return a, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.revoker = &redisRevoker{client: client}

	return a, nil
}

// NewAuthWithRevoker builds an Auth with an explicit revocation backend
// instead of the redis one derived from config.
func NewAuthWithRevoker(config *Config, revoker TokenRevoker) *Auth {
	return &Auth{
		secret:     []byte(config.Auth.JWTSecret),
		bcryptCost: config.Auth.BcryptCost,
		revoker:    revoker,
	}
}

func (a *Auth) Close() error {
	if a.revoker != nil {
		return a.revoker.Close()
	}
	return nil
}

func (a *Auth) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (a *Auth) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a token for the given identity, expiring in one day.
func (a *Auth) IssueToken(subjectID int64, email, role string) (string, error) {
	jti, err := newTokenID()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", subjectID),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Auth) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// RevokeToken blacklists the token's jti until the token would have expired
// anyway.
func (a *Auth) RevokeToken(ctx context.Context, claims *Claims) error {
	if a.revoker == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	return a.revoker.Revoke(ctx, claims.ID, ttl)
}

func (a *Auth) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if a.revoker == nil || jti == "" {
		return false, nil
	}

	return a.revoker.IsRevoked(ctx, jti)
}

type redisRevoker struct {
	client *redis.Client
}

func (r *redisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	key := fmt.Sprintf(revokedKeyTpl, jti)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *redisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf(revokedKeyTpl, jti)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

func (r *redisRevoker) Close() error {
	return r.client.Close()
}

func newTokenID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
