package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"accountpool/internal/logger"
	httppkg "accountpool/internal/pkg/http"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic: %v", v)
				logger.Trace(fmt.Sprintf("panic in %s %s", r.Method, r.URL.Path), string(debug.Stack()))
				httppkg.WriteError(w, http.StatusInternalServerError, "internal server error, see server logs")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
