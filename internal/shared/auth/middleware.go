package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/radieske/pick-control/internal/shared/errs"
)

type ctxKey struct{}

// WithSession devolve um contexto carregando s
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFrom lê a sessão colocada pelo Middleware
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// BearerToken extrai o token do header Authorization.
// Para o WebSocket o navegador não manda header, então ?token= também vale.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Middleware exige um token válido e injeta a Session no contexto
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := v.Verify(r.Context(), BearerToken(r))
			if err != nil {
				msg := "unauthorized"
				status := errs.HTTPStatus(err)
				if status != http.StatusUnauthorized {
					msg = "auth backend unavailable"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
