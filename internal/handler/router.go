package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dialtone-ai/dialtone/internal/handler/calls"
	"github.com/dialtone-ai/dialtone/internal/handler/events"
	"github.com/dialtone-ai/dialtone/internal/handler/twilio"
	middlewarePkg "github.com/dialtone-ai/dialtone/internal/middleware"
	callservice "github.com/dialtone-ai/dialtone/internal/service/call"
	"github.com/dialtone-ai/dialtone/pkg/utils"
)

// Deps carries everything the router mounts. Updater and Dialer are nil when
// telephony credentials are absent; Hub is nil when the event feed is
// disabled.
type Deps struct {
	Orchestrator  *callservice.Orchestrator
	Updater       twilio.CallUpdater
	Dialer        calls.Dialer
	Hub           *events.Hub
	PublicBaseURL string
	RecordTimeout int
	WebhookBudget time.Duration
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	webhookHandler := twilio.New(deps.Orchestrator, deps.Updater, deps.RecordTimeout, deps.WebhookBudget)
	webhookHandler.RegisterRoutes(r)

	callsHandler := calls.New(deps.Orchestrator, deps.Dialer, deps.PublicBaseURL)
	callsHandler.RegisterRoutes(r)

	if deps.Hub != nil {
		deps.Hub.RegisterRoutes(r)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}
