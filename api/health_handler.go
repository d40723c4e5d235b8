package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/database"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	database    database.Database
	startupTime time.Time
}

func newHealthHandler(database database.Database, startupTime time.Time, exposeCauses bool) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger, exposeCauses),
		logger:      logger,
		database:    database,
		startupTime: startupTime,
	}
}

// getHealth always answers 200 while the process is up; the database field
// reports whether the store responds.
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "ok"
		if err := h.database.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("database ping failed")
			dbStatus = "unavailable"
		}

		h.responder.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "OK",
			Message:   "project showcase API is running",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(h.startupTime).Round(time.Second).String(),
			Database:  dbStatus,
		})
	}
}
