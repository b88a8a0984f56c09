package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/gokode/internal/pkg/config"
)

// middlewareMaintenance serves 503 for route patterns listed under
// app.maintenance.endpoints, so a single endpoint can be taken out of
// rotation without a redeploy of the rest.
func middlewareMaintenance(cfg config.Config) Middleware {
	blocked := make(map[string]struct{})
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
				blocked[endpoint] = struct{}{}
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, down := blocked[matchedRoutePath(r)]; down {
				writeJSON(w, errorResponse{Error: "service is under maintenance", Code: "MAINTENANCE"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
