package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"property_search/internal/config"
	"property_search/internal/lib/logger/sl"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Viewer зритель каталога. Привилегированный видит объекты в любом статусе.
type Viewer struct {
	Subject    string `json:"subject,omitempty"`
	Role       string `json:"role,omitempty"`
	Privileged bool   `json:"privileged"`
}

func (v Viewer) IsPrivilegedViewer() bool {
	return v.Privileged
}

// Parser проверяет JWT и определяет роль зрителя.
type Parser struct {
	secret    []byte
	adminRole string
	disabled  bool
}

func NewParser(cfg config.AuthConfig) *Parser {
	return &Parser{
		secret:    []byte(cfg.Secret),
		adminRole: cfg.AdminRole,
		disabled:  cfg.DisableAuth,
	}
}

// Parse разбирает заголовок Authorization. Без токена зритель публичный.
// С выключенной авторизацией любой зритель привилегированный.
func (p *Parser) Parse(header string) (Viewer, error) {
	const op = "auth.Parser.Parse"

	if p.disabled {
		return Viewer{Role: p.adminRole, Privileged: true}, nil
	}

	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Bearer "))
	if raw == "" {
		return Viewer{}, nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return Viewer{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	sub, _ := claims.GetSubject()
	role := roleFromClaims(claims)

	return Viewer{
		Subject:    sub,
		Role:       role,
		Privileged: role != "" && strings.EqualFold(role, p.adminRole),
	}, nil
}

// roleFromClaims поддерживает и "role": "admin", и "roles": ["admin", ...].
func roleFromClaims(claims jwt.MapClaims) string {
	if role, ok := claims["role"].(string); ok {
		return role
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

type ctxKey struct{}

// WithViewer кладёт зрителя в контекст.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// FromContext зритель из контекста; по умолчанию публичный.
func FromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(ctxKey{}).(Viewer)
	return v
}

// Middleware определяет зрителя по заголовку Authorization. Невалидный токен даёт 401.
func (p *Parser) Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := p.Parse(r.Header.Get("Authorization"))
			if err != nil {
				log.Debug("rejected token", sl.Err(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
		})
	}
}
