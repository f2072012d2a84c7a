// Package auth проверяет bearer-токены, выданные внешним сервисом авторизации.
// Идентификатор пользователя берется из claim "sub".
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no authorization header")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type contextKey string

const userIDKey contextKey = "userID"

type Verifier struct {
	keyfunc jwt.Keyfunc
	opts    []jwt.ParserOption
}

// NewVerifier выбирает проверку по JWKS, если задан JWKSURL, иначе HS256 с общим ключом.
// Ключи JWKS обновляются в фоне до отмены ctx.
func NewVerifier(ctx context.Context, conf *Config) (*Verifier, error) {
	if conf.JWKSURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{conf.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWKS keyfunc: %w", err)
		}
		log.Printf("[Auth] Verifying tokens with JWKS from %s", conf.JWKSURL)
		return newVerifier(k.Keyfunc, []string{"RS256", "ES256"}, conf), nil
	}

	if conf.Secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	secret := []byte(conf.Secret)
	return newVerifier(func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, []string{"HS256"}, conf), nil
}

// NewVerifierWithKeyfunc нужен для тестов и нестандартных источников ключей
func NewVerifierWithKeyfunc(kf jwt.Keyfunc, methods []string, conf *Config) *Verifier {
	return newVerifier(kf, methods, conf)
}

func newVerifier(kf jwt.Keyfunc, methods []string, conf *Config) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(conf.Leeway),
	}
	if conf.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(conf.Issuer))
	}
	return &Verifier{keyfunc: kf, opts: opts}
}

// VerifyToken разбирает заголовок Authorization и возвращает ID пользователя
func (v *Verifier) VerifyToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("%w: expected Bearer <token>", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, v.keyfunc, v.opts...)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext возвращает пустую строку для неаутентифицированного запроса
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
