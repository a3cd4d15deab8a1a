package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RaufunNazin/Highlighter/internal/config"
	"github.com/RaufunNazin/Highlighter/internal/runs"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Store, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/runs", listRunsHandler(cfg))
		r.Get("/runs/{id}", getRunHandler(cfg))
		r.Get("/segments", segmentsHandler(cfg))
		r.Post("/logout", logoutHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := StatusResponse{
			Authenticated: cfg.Store.Token() != "",
		}

		if user, err := cfg.Store.User(ctx); err == nil && user != nil {
			resp.Username = user.Username
		}
		resp.VideoRef, _ = cfg.Store.VideoRef(ctx)
		resp.FinalVideoRef, _ = cfg.Store.FinalVideoRef(ctx)

		recent, err := cfg.Journal.List(ctx, 10)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to read run journal", "INTERNAL_ERROR")
			return
		}
		for _, run := range recent {
			if run.Status == runs.StatusRunning {
				resp.RunsRunning++
				if resp.ActiveRun == nil {
					active := RunToResponse(run)
					resp.ActiveRun = &active
				}
			}
			if run.Status == runs.StatusFailed && resp.LastError == "" {
				resp.LastError = run.Error
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cfg.Journal.List(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(list))}
		for i, run := range list {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "run id required", "BAD_REQUEST")
			return
		}

		run, err := cfg.Journal.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if run == nil {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, RunToResponse(run))
	}
}

// segmentsHandler proxies the candidate segments of the last generation run
// from the remote service.
func segmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		videoRef, err := cfg.Store.VideoRef(ctx)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to read session", "INTERNAL_ERROR")
			return
		}
		if videoRef == "" {
			WriteError(w, http.StatusConflict, "no generated video in session", "NO_VIDEO")
			return
		}

		segments, err := cfg.Gateway.Segments(ctx, videoRef)
		if err != nil {
			WriteError(w, http.StatusBadGateway, err.Error(), "UPSTREAM_ERROR")
			return
		}

		resp := SegmentsResponse{
			VideoRef: videoRef,
			Segments: make([]SegmentResponse, len(segments)),
		}
		for i, s := range segments {
			resp.Segments[i] = SegmentResponse{ID: s.ID, SegmentRef: s.SegmentRef}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func logoutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Auth.Logout(r.Context()); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
