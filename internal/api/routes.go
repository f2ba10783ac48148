package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/renderdeck/renderdeck-agent/internal/exporter"
	"github.com/renderdeck/renderdeck-agent/internal/settings"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Settings, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/settings", getSettingsHandler(cfg))
		r.Put("/settings", updateSettingsHandler(cfg))
		r.Post("/export", exportHandler(cfg))
		r.Get("/batches", listBatchesHandler(cfg))
		r.Get("/batches/{id}", getBatchHandler(cfg))
		r.Get("/log", logHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		state := "idle"
		if cfg.Exporter != nil && cfg.Exporter.IsRunning() {
			state = "exporting"
		}

		resp := StatusResponse{State: state}

		batches, err := cfg.Repo.ListBatches(ctx, 1)
		if err == nil && len(batches) > 0 {
			last := BatchToResponse(batches[0])
			resp.LastBatch = &last
			if batches[0].Status == exporter.BatchStatusFailed {
				resp.LastError = batches[0].Error
			}
		}

		if cfg.Probe != nil {
			if status := cfg.Probe.Get(ctx); status != nil {
				resp.Host = &HostProbeResponse{
					Available:   status.Available,
					IsWindows:   status.IsWindows,
					Error:       status.Error,
					LastProbeAt: status.ProbedAt.Format(time.RFC3339),
				}
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// getSettingsHandler returns effective export settings: defaults overlaid
// with whatever the panel has stored.
func getSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, err := cfg.Settings.All(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to read settings", "INTERNAL_ERROR")
			return
		}

		effective := map[string]string{
			settings.KeyNamingPattern:     settings.DefaultNamingPattern,
			settings.KeyExportFolderName:  settings.DefaultExportFolderName,
			settings.KeyExportFolderDepth: "0",
		}
		for key, value := range stored {
			if settings.IsExportKey(key) {
				effective[key] = value
			}
		}

		WriteJSON(w, http.StatusOK, SettingsResponse{Settings: effective})
	}
}

func updateSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if len(req.Settings) == 0 {
			WriteError(w, http.StatusBadRequest, "no settings provided", "BAD_REQUEST")
			return
		}

		for key := range req.Settings {
			if !settings.IsExportKey(key) {
				WriteError(w, http.StatusBadRequest, "unknown setting: "+key, "BAD_REQUEST")
				return
			}
		}

		for key, value := range req.Settings {
			if err := cfg.Settings.Set(r.Context(), key, value); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to store setting", "INTERNAL_ERROR")
				return
			}
		}

		getSettingsHandler(cfg)(w, r)
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := cfg.Exporter.Export(r.Context())
		if err != nil {
			if errors.Is(err, exporter.ErrExportRunning) {
				WriteError(w, http.StatusConflict, err.Error(), "EXPORT_RUNNING")
				return
			}
			if result != nil {
				// Partial outcome: items were queued but the flush failed.
				WriteJSON(w, http.StatusBadGateway, ResultToResponse(result))
				return
			}
			WriteError(w, http.StatusBadGateway, err.Error(), "EXPORT_FAILED")
			return
		}

		WriteJSON(w, http.StatusAccepted, ResultToResponse(result))
	}
}

func listBatchesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		batches, err := cfg.Repo.ListBatches(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list batches", "INTERNAL_ERROR")
			return
		}

		resp := BatchesResponse{Batches: make([]BatchResponse, len(batches))}
		for i, b := range batches {
			resp.Batches[i] = BatchToResponse(b)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getBatchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "batch id required", "BAD_REQUEST")
			return
		}

		batch, err := cfg.Repo.GetBatch(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if batch == nil {
			WriteError(w, http.StatusNotFound, "batch not found", "NOT_FOUND")
			return
		}

		items, err := cfg.Repo.GetItems(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := BatchDetailResponse{
			BatchResponse: BatchToResponse(batch),
			Items:         make([]ItemResponse, len(items)),
		}
		for i, item := range items {
			resp.Items[i] = ItemToResponse(item)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func logHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 100
		}

		items, err := cfg.Repo.ListRecentItems(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to read export log", "INTERNAL_ERROR")
			return
		}

		resp := LogResponse{Items: make([]ItemResponse, len(items))}
		for i, item := range items {
			resp.Items[i] = ItemToResponse(item)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
