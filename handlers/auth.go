package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"deepessays.dev/deep-essays/posts"
)

// TokenVerifier turns a bearer token into an authenticated session.
// Production uses Firebase ID tokens; dev and tests use HS256 tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (posts.Session, error)
}

type contextKey string

const sessionKey contextKey = "session"

func SessionFromContext(r *http.Request) (posts.Session, error) {
	session, ok := r.Context().Value(sessionKey).(posts.Session)
	if !ok {
		return posts.Session{}, errors.New("session not found in context")
	}
	return session, nil
}

// AuthMiddleware verifies the Authorization bearer token and injects the
// caller's session into the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			session, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type devClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// DevVerifier accepts HS256 tokens signed with a shared secret, so the
// server runs without Firebase credentials in local dev and tests.
type DevVerifier struct {
	Secret []byte
}

func (v DevVerifier) Verify(ctx context.Context, tokenString string) (posts.Session, error) {
	claims := &devClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil || !token.Valid {
		return posts.Session{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return posts.Session{}, errors.New("token has no subject")
	}
	return posts.Session{UserID: claims.Subject, Email: claims.Email}, nil
}

// SignDevToken mints an HS256 token DevVerifier accepts.
func SignDevToken(secret []byte, session posts.Session, ttl time.Duration) (string, error) {
	claims := devClaims{
		Email: session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
