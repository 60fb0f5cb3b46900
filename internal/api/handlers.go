package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agendafacil/agenda-service/internal/chat"
	"github.com/agendafacil/agenda-service/internal/observability/metrics"
	"github.com/agendafacil/agenda-service/internal/slot"
)

// ChatEngine is the conversational surface the chat endpoint needs.
type ChatEngine interface {
	Handle(ctx context.Context, sessionID, message string) (chat.Reply, error)
}

func chatHandler(engine ChatEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "empty_message", "message must not be empty")
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		reply, err := engine.Handle(r.Context(), sessionID, req.Message)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ChatResponse{
			Reply:     reply.Text,
			SessionID: sessionID,
			Options:   reply.Options,
		})
	}
}

func adminListSlotsHandler(store slot.Store, windowDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			slots []slot.Slot
			err   error
		)

		switch status := r.URL.Query().Get("status"); status {
		case "", "booked":
			slots, err = store.ListBooked(r.Context())
		case "open":
			now := time.Now()
			slots, err = store.ListAvailable(r.Context(), now, now.AddDate(0, 0, windowDays))
		default:
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be open or booked")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]SlotResponse, len(slots))
		for i, s := range slots {
			resp[i] = newSlotResponse(s)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func adminAddSlotHandler(store slot.Store, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddSlotRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		at, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_time", "date must be YYYY-MM-DD and time HH:MM")
			return
		}

		created, err := store.Insert(r.Context(), at)
		if err != nil {
			if errors.Is(err, slot.ErrDuplicateSlot) {
				writeError(w, http.StatusConflict, "duplicate_slot", "a slot already exists for that date and time, pick a different one")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		m.ObserveAdminAction("insert")
		writeJSON(w, http.StatusCreated, newSlotResponse(*created))
	}
}

func adminReleaseSlotHandler(store slot.Store, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "id must be an integer")
			return
		}

		if err := store.Release(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		m.ObserveAdminAction("release")
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminDeleteSlotHandler(store slot.Store, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "id must be an integer")
			return
		}

		if err := store.DeleteOne(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		m.ObserveAdminAction("delete")
		w.WriteHeader(http.StatusNoContent)
	}
}

func adminDeleteSlotsHandler(store slot.Store, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteSlotsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := store.DeleteMany(r.Context(), req.IDs); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		m.ObserveAdminAction("delete_many")
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
