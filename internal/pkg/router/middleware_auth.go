package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
)

// bearerToken extracts the token from an "Authorization: Bearer x"
// header, or "" when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// middlewareAuthentication verifies the bearer token on every route not
// listed in publicEndpoints (method → route pattern set) and stores the
// claims on the context for the handlers.
func middlewareAuthentication(verifier jwt.JWT, publicEndpoints map[string]map[string]struct{}) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public, ok := publicEndpoints[r.Method]; ok {
				if _, skip := public[matchedRoutePath(r)]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := bearerToken(r)
			if token == "" {
				writeJSON(w, errorResponse{Error: "Authentication required", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSON(w, errorResponse{Error: "Invalid or expired token", Code: goerror.CodeUnauthorized.String()}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
