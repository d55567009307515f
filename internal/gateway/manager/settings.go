package manager

import (
	"net/http"

	"accountpool/internal/config"
	"accountpool/internal/logger"
	apperrors "accountpool/internal/pkg/errors"
	httppkg "accountpool/internal/pkg/http"
)

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		httppkg.WriteJSON(w, http.StatusOK, config.GetPoolSettings())
	case http.MethodPut:
		h.updateSettings(w, r)
	default:
		httppkg.WriteHTTPError(w, apperrors.MethodNotAllowed("method not allowed"))
	}
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	s := config.GetPoolSettings()
	if err := httppkg.ReadJSON(r, &s); err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	if err := config.UpdatePoolSettings(s); err != nil {
		httppkg.WriteHTTPError(w, apperrors.BadRequest(err.Error()))
		return
	}

	cfg := config.Get()
	h.pool.SetTimeouts(cfg.LoginTimeout(), cfg.InfoThreshold())
	logger.Init()
	h.log.Info("Pool settings updated: login timeout %dm, info threshold %dm, debug %s",
		cfg.LoginTimeoutMinutes, cfg.InfoThresholdMinutes, cfg.Debug)
	httppkg.WriteJSON(w, http.StatusOK, config.GetPoolSettings())
}
