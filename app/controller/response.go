package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.SugaredLogger, handler string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("❌ %s: Error encoding response: %v", handler, err)
	}
}

// allowMethod rejects requests whose method is not one of methods
func allowMethod(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, handler string, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	logger.Warnf("❌ %s: Method not allowed: %s", handler, r.Method)
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}
