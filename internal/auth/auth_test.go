package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signHS256(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func requestWith(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/v1/files", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestVerifyTokenHS256(t *testing.T) {
	v, err := NewVerifier(context.Background(), &Config{Secret: testSecret})
	if err != nil {
		t.Fatal(err)
	}

	valid := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	noExp := jwt.RegisteredClaims{Subject: "alice"}
	noSub := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer " + signHS256(t, testSecret, valid), "alice", nil},
		{"lowercase scheme", "bearer " + signHS256(t, testSecret, valid), "alice", nil},
		{"no header", "", "", ErrNoToken},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", ErrInvalidToken},
		{"empty token", "Bearer ", "", ErrInvalidToken},
		{"wrong secret", "Bearer " + signHS256(t, "other", valid), "", ErrInvalidToken},
		{"expired", "Bearer " + signHS256(t, testSecret, expired), "", ErrInvalidToken},
		{"no expiration", "Bearer " + signHS256(t, testSecret, noExp), "", ErrInvalidToken},
		{"no subject", "Bearer " + signHS256(t, testSecret, noSub), "", ErrInvalidToken},
		{"garbage", "Bearer not.a.jwt", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.VerifyToken(requestWith(tt.header))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("user = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerifyTokenIssuer(t *testing.T) {
	v, err := NewVerifier(context.Background(), &Config{Secret: testSecret, Issuer: "drive-auth"})
	if err != nil {
		t.Fatal(err)
	}
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	if _, err := v.VerifyToken(requestWith("Bearer " + signHS256(t, testSecret, claims))); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	jwks, _ := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": "test-key",
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	})
	kf, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		t.Fatal(err)
	}
	v := NewVerifierWithKeyfunc(kf.Keyfunc, []string{"RS256"}, &Config{})

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "bob",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}

	got, err := v.VerifyToken(requestWith("Bearer " + signed))
	if err != nil {
		t.Fatal(err)
	}
	if got != "bob" {
		t.Errorf("user = %q, want bob", got)
	}

	// HS256 с тем же kid не должен пройти проверку RS256
	hs := signHS256(t, testSecret, jwt.RegisteredClaims{Subject: "bob", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	if _, err := v.VerifyToken(requestWith("Bearer " + hs)); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("HS256 token: err = %v, want ErrInvalidToken", err)
	}
}

func TestUserIDContext(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context: %q", got)
	}
	if got := UserIDFromContext(WithUserID(context.Background(), "alice")); got != "alice" {
		t.Errorf("got %q, want alice", got)
	}
}
