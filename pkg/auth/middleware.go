package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/chainsafe/goldengate-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/goldengate-middleware/pkg/app/http"
)

// RequireToken rejects requests without a valid bearer token and stores the
// token subject in the request context
func RequireToken(v *TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "bearer token required"))
				return
			}
			claims, err := v.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), claims.Subject)))
		})
	}
}
