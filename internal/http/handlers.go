package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"assetmix/internal/log"
	"assetmix/internal/middleware/ratelimit"
	"assetmix/internal/middleware/security"
	"assetmix/internal/middleware/trace"
	"assetmix/internal/view"
)

// Template names.
const (
	tmplIndex          = "index.html"
	tmplApp            = "app"
	tmplConfigPanel    = "config-panel"
	tmplAssetBlocks    = "asset-blocks"
	tmplRecommendation = "recommendation"
	tmplHistoryPanel   = "history-panel"
)

// controller returns the session's controller. A new session is primed with
// the asset lists so any fragment renders a complete page state.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) *view.Controller {
	id, c, created := s.sessions.Ensure(w, r)
	if created {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Session started", log.FieldSessionID, id)
		if err := c.LoadAssets(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Initial asset load failed", log.FieldError, err.Error())
		}
	}
	return c
}

// fail answers an operation error. Stale responses are silently dropped;
// anything else becomes an alert and leaves the page as it was.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, view.ErrStale):
		NewHTMXResponse().Status(http.StatusNoContent).NoSwap().Write(w)
	case errors.Is(err, view.ErrUnknownView):
		NotFoundError("unknown view").Write(w)
	default:
		msg := view.AlertMessage(err)
		if msg == "" {
			msg = "Something went wrong, please try again."
		}
		AlertResponse(msg).Write(w)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, c, created := s.sessions.Ensure(w, r)
	if created {
		log.FromContext(ctx).InfoContext(ctx, "Session started", log.FieldSessionID, id)
	}

	data := indexPage{}
	if err := c.LoadAssets(ctx); err != nil && !errors.Is(err, view.ErrStale) {
		// The page still renders with whatever lists it had.
		data.Alert = view.AlertMessage(err)
	}
	data.Bindings = c.Page()
	s.render(w, r, tmplIndex, data, nil)
}

// indexPage is the full page. A full navigation bypasses htmx, so an alert
// for it is rendered into the page instead of a trigger header.
type indexPage struct {
	view.Bindings
	Alert string
}

func (s *Server) handleSwitchView(w http.ResponseWriter, r *http.Request) {
	v, ok := view.ParseView(mux.Vars(r)["view"])
	if !ok {
		NotFoundError("unknown view").Write(w)
		return
	}
	c := s.controller(w, r)
	if err := c.SwitchView(r.Context(), v); err != nil {
		// The panel switch itself always lands; only the history fetch
		// can fail, so the new panel is still rendered.
		if errors.Is(err, view.ErrStale) {
			s.fail(w, r, err)
			return
		}
		b := NewHTMXResponse().TriggerAlert(AlertError, view.AlertMessage(err))
		s.render(w, r, tmplApp, c.Page(), b)
		return
	}
	s.render(w, r, tmplApp, c.Page(), nil)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if err := c.LoadAssets(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, tmplAssetBlocks, c.Page(), nil)
}

func (s *Server) handleSubmitAsset(w http.ResponseWriter, r *http.Request) {
	in, err := ParseAssetInput(r)
	if err != nil {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Unreadable asset form",
			log.FieldOperation, log.OpSubmitAsset,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeValidation)
		AlertResponse(view.MsgInvalidAsset).Write(w)
		return
	}
	c := s.controller(w, r)
	if err := c.SubmitAsset(r.Context(), in); err != nil && !errors.Is(err, view.ErrStale) {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, tmplConfigPanel, c.Page(), NewHTMXResponse().TriggerModalClose().TriggerFormReset())
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if err := c.FetchRecommendation(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, tmplRecommendation, c.Page(), nil)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if err := c.SaveSnapshot(r.Context()); err != nil {
		var ae *view.AlertError
		if errors.As(err, &ae) && ae.Op == log.OpLoadHistory {
			// Saved, but the history view could not be refreshed.
			b := NewHTMXResponse().
				TriggerAlert(AlertSuccess, view.MsgSaveSucceeded+" "+ae.Message)
			s.render(w, r, tmplApp, c.Page(), b)
			return
		}
		// A stale history reload means the record was still saved.
		if !errors.Is(err, view.ErrStale) {
			s.fail(w, r, err)
			return
		}
	}
	b := NewHTMXResponse().TriggerAlert(AlertSuccess, view.MsgSaveSucceeded)
	s.render(w, r, tmplApp, c.Page(), b)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)
	if err := c.LoadHistory(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, tmplHistoryPanel, c.Page(), nil)
}

// handleChart serves a session's chart as SVG or as its declarative option.
// Nothing is served for a container that was disposed or never drawn.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	c, ok := s.sessions.Lookup(r)
	if !ok {
		NotFoundError("no session").Write(w)
		return
	}
	svg, opt, ok := c.Chart(vars["container"])
	if !ok {
		NotFoundError("no chart").Write(w)
		return
	}

	switch vars["format"] {
	case "json":
		writeJSON(w, r, http.StatusOK, opt)
	default:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(svg)
	}
}

type healthResponse struct {
	Status    string                    `json:"status"`
	Time      time.Time                 `json:"time"`
	Sessions  int                       `json:"sessions"`
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Time:      time.Now().UTC(),
		Sessions:  s.sessions.Len(),
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"templates": "ok", "asset_service": "ok"}
	status := http.StatusOK

	if s.templates == nil {
		checks["templates"] = "not loaded"
		status = http.StatusServiceUnavailable
	}
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Asset service not reachable",
				log.FieldUpstream, "asset_api",
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeNetwork)
			checks["asset_service"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, r, status, map[string]any{"status": state, "checks": checks})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "JSON encode failed", log.FieldError, err.Error())
	}
}
