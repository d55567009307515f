// Package manager serves the management API of the account pool.
package manager

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"accountpool/internal/accounts"
	"accountpool/internal/credential"
	"accountpool/internal/logger"
	apperrors "accountpool/internal/pkg/errors"
	httppkg "accountpool/internal/pkg/http"
)

const (
	// fetchTimeout bounds a forced metadata fetch made on behalf of a client.
	fetchTimeout = 20 * time.Second
	loginTimeout = 30 * time.Second
)

type Handler struct {
	pool  *credential.Pool
	store *accounts.Store
	log   logger.Logger
}

func New(pool *credential.Pool, store *accounts.Store, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{pool: pool, store: store, log: log}
}

type accountRequest struct {
	Password string             `json:"password"`
	Options  credential.Options `json:"options"`
}

type selectionView struct {
	Name        string             `json:"name"`
	Options     credential.Options `json:"options"`
	Valid       bool               `json:"valid"`
	LastLoginAt time.Time          `json:"lastLoginAt"`
}

type statsView struct {
	Total   int  `json:"total"`
	Valid   int  `json:"valid"`
	Premium int  `json:"premium"`
	Errors  int  `json:"errors"`
	CanUse  bool `json:"canUse"`
}

func isForce(r *http.Request) bool {
	v := strings.TrimSpace(r.URL.Query().Get("force"))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// detached keeps pool work alive when the client goes away: a login cut
// short would invalidate the account.
func detached(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), d)
}

func accountName(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		return "", apperrors.BadRequest("missing account name")
	}
	return name, nil
}

func (h *Handler) requireAccount(r *http.Request) (string, error) {
	name, err := accountName(r)
	if err != nil {
		return "", err
	}
	if _, ok := h.pool.AccountData(name); !ok {
		return "", apperrors.NotFound("unknown account " + name)
	}
	return name, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := detached(r, fetchTimeout)
	defer cancel()
	httppkg.WriteJSON(w, http.StatusOK, h.pool.GetAll(ctx, isForce(r)))
}

// HandleAccount dispatches GET, PUT and DELETE on /accounts/{name}.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		httppkg.WriteHTTPError(w, apperrors.MethodNotAllowed("method not allowed"))
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	name, err := accountName(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	ctx, cancel := detached(r, fetchTimeout)
	defer cancel()

	info, err := h.pool.GetInfo(ctx, name, isForce(r))
	if err != nil {
		httppkg.WriteHTTPError(w, apperrors.NotFound("unknown account "+name))
		return
	}
	httppkg.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	name, err := accountName(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	var req accountRequest
	if err := httppkg.ReadJSON(r, &req); err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	if _, exists := h.pool.AccountData(name); !exists && req.Password == "" {
		httppkg.WriteHTTPError(w, apperrors.BadRequest("password is required for a new account"))
		return
	}

	ctx, cancel := detached(r, loginTimeout)
	defer cancel()
	changed := h.pool.AddOrUpdate(ctx, name, req.Password, req.Options)

	if h.store != nil {
		if err := h.store.Upsert(name, req.Password, req.Options); err != nil {
			h.log.Error("Save account %s: %v", name, err)
			httppkg.WriteHTTPError(w, apperrors.Internal("account updated but not saved"))
			return
		}
	}
	httppkg.WriteJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	name, err := h.requireAccount(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	h.pool.Remove(name)
	if h.store != nil {
		if _, err := h.store.Delete(name); err != nil {
			h.log.Error("Save account removal %s: %v", name, err)
			httppkg.WriteHTTPError(w, apperrors.Internal("account removed but not saved"))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSelect(w http.ResponseWriter, _ *http.Request) {
	s, ok := h.pool.Select()
	if !ok {
		httppkg.WriteHTTPError(w, apperrors.NotFound(credential.ErrNoAccount.Error()))
		return
	}
	httppkg.WriteJSON(w, http.StatusOK, selectionView{
		Name:        s.Name,
		Options:     s.Options,
		Valid:       s.Valid,
		LastLoginAt: s.LastLoginAt,
	})
}

func (h *Handler) HandleCanUse(w http.ResponseWriter, _ *http.Request) {
	httppkg.WriteJSON(w, http.StatusOK, map[string]bool{"canUse": h.pool.CanUse()})
}

func (h *Handler) HandleDepleted(w http.ResponseWriter, r *http.Request) {
	name, err := h.requireAccount(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	h.pool.MarkDepleted(name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleExpired(w http.ResponseWriter, r *http.Request) {
	name, err := h.requireAccount(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	h.pool.MarkExpired(name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	name, err := h.requireAccount(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	ctx, cancel := detached(r, loginTimeout)
	defer cancel()
	httppkg.WriteJSON(w, http.StatusOK, map[string]bool{"fresh": h.pool.CheckLoginFreshness(ctx, name)})
}

func (h *Handler) HandlePremium(w http.ResponseWriter, r *http.Request) {
	name, err := accountName(r)
	if err != nil {
		httppkg.WriteHTTPError(w, err)
		return
	}
	ctx, cancel := detached(r, fetchTimeout)
	defer cancel()

	premium, err := h.pool.IsPremium(ctx, name)
	if err != nil {
		httppkg.WriteHTTPError(w, apperrors.NotFound("unknown account "+name))
		return
	}
	httppkg.WriteJSON(w, http.StatusOK, map[string]bool{"premium": premium})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := detached(r, fetchTimeout)
	defer cancel()
	httppkg.WriteJSON(w, http.StatusOK, calculateStats(h.pool.GetAll(ctx, false), h.pool.CanUse()))
}

func calculateStats(all []credential.AccountInfo, canUse bool) statsView {
	s := statsView{Total: len(all), CanUse: canUse}
	for _, a := range all {
		if a.Valid {
			s.Valid++
		}
		if a.Premium {
			s.Premium++
		}
		if a.Error != "" {
			s.Errors++
		}
	}
	return s
}
