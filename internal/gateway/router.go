package gateway

import (
	"context"
	"errors"
	"net/http"

	"accountpool/internal/gateway/manager"
	"accountpool/internal/middleware"
	httppkg "accountpool/internal/pkg/http"
)

func NewRouter(h *manager.Handler, apiKey string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", allowMethods(handleHealth, http.MethodGet, http.MethodHead))

	mux.HandleFunc("/accounts", allowMethods(h.HandleList, http.MethodGet, http.MethodHead))
	mux.HandleFunc("/accounts/{name}", h.HandleAccount)
	mux.HandleFunc("/accounts/{name}/premium", allowMethods(h.HandlePremium, http.MethodGet, http.MethodHead))
	mux.HandleFunc("/accounts/{name}/depleted", allowMethods(h.HandleDepleted, http.MethodPost))
	mux.HandleFunc("/accounts/{name}/expired", allowMethods(h.HandleExpired, http.MethodPost))
	mux.HandleFunc("/accounts/{name}/check", allowMethods(h.HandleCheck, http.MethodPost))

	mux.HandleFunc("/select", allowMethods(h.HandleSelect, http.MethodGet))
	mux.HandleFunc("/can-use", allowMethods(h.HandleCanUse, http.MethodGet, http.MethodHead))
	mux.HandleFunc("/stats", allowMethods(h.HandleStats, http.MethodGet, http.MethodHead))
	mux.HandleFunc("/settings", h.HandleSettings)

	var handler http.Handler = middleware.Recovery(mux)
	handler = middleware.Logging(handler)
	handler = middleware.Auth(handler, apiKey)

	return handler
}

func allowMethods(h http.HandlerFunc, methods ...string) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		allowed[m] = struct{}{}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := allowed[r.Method]; ok {
			h(w, r)
			return
		}
		if errors.Is(r.Context().Err(), context.Canceled) {
			return
		}
		httppkg.WriteError(w, http.StatusMethodNotAllowed, "method not allowed, check the HTTP method this endpoint expects")
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
