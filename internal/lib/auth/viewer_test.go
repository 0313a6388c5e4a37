package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"property_search/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParser_Parse(t *testing.T) {
	p := NewParser(config.AuthConfig{Secret: testSecret, AdminRole: "admin"})
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		header     string
		privileged bool
		wantErr    bool
	}{
		{name: "no token", header: "", privileged: false},
		{
			name:       "admin role",
			header:     "Bearer " + sign(t, jwt.MapClaims{"sub": "u1", "role": "ADMIN", "exp": exp}, testSecret),
			privileged: true,
		},
		{
			name:       "roles array",
			header:     "Bearer " + sign(t, jwt.MapClaims{"sub": "u2", "roles": []string{"admin"}, "exp": exp}, testSecret),
			privileged: true,
		},
		{
			name:       "client role",
			header:     "Bearer " + sign(t, jwt.MapClaims{"sub": "u3", "role": "client", "exp": exp}, testSecret),
			privileged: false,
		},
		{
			name:    "wrong secret",
			header:  "Bearer " + sign(t, jwt.MapClaims{"role": "admin", "exp": exp}, "other"),
			wantErr: true,
		},
		{
			name:    "expired",
			header:  "Bearer " + sign(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret),
			wantErr: true,
		},
		{name: "garbage", header: "Bearer not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := p.Parse(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.privileged, v.IsPrivilegedViewer())
		})
	}
}

func TestParser_DisabledAuthIsPrivileged(t *testing.T) {
	p := NewParser(config.AuthConfig{AdminRole: "admin", DisableAuth: true})

	v, err := p.Parse("Bearer whatever")
	require.NoError(t, err)
	assert.True(t, v.IsPrivilegedViewer())
}

func TestParser_Middleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	p := NewParser(config.AuthConfig{Secret: testSecret, AdminRole: "admin"})

	var got Viewer
	h := p.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"sub": "u1", "role": "admin"}, testSecret))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Privileged)
	assert.Equal(t, "u1", got.Subject)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
