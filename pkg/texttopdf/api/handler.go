package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/texttopdf/pkg/texttopdf"
)

// MaxEventSize caps the accepted notification body
const MaxEventSize = 1 << 20

// EventHandler serves bucket notifications delivered over HTTP, such as
// MinIO webhook targets or an S3 event forwarder.
type EventHandler struct {
	converter *texttopdf.Converter
	token     string
}

// NewEventHandler creates a handler; an empty token disables authentication
func NewEventHandler(converter *texttopdf.Converter, token string) *EventHandler {
	return &EventHandler{
		converter: converter,
		token:     token,
	}
}

// Routes returns the handler's routes
func (h *EventHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Group(func(r chi.Router) {
		r.Use(BearerToken(h.token))
		r.Post("/events", h.HandleEvent)
	})
	return r
}

// Health reports liveness
func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// HandleEvent converts the object named by the notification in the request
// body. The Response is written as JSON with its StatusCode as HTTP status.
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxEventSize))
	if err != nil {
		slog.Error("Failed to read event body", "error", err)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		render.Status(r, status)
		render.JSON(w, r, texttopdf.NewErrorResponse(err))
		return
	}

	ctx := r.Context()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		ctx = texttopdf.WithInvocationID(ctx, reqID)
	}

	resp := h.converter.Handle(ctx, body)
	render.Status(r, resp.StatusCode)
	render.JSON(w, r, resp)
}
