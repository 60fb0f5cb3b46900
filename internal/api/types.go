package api

import (
	"time"

	"github.com/agendafacil/agenda-service/internal/slot"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"session_id"`
	Options   []string `json:"options,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type AddSlotRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Time string `json:"time"` // HH:MM
}

type DeleteSlotsRequest struct {
	IDs []int64 `json:"ids"`
}

type SlotResponse struct {
	ID           int64      `json:"id"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
	Available    bool       `json:"available"`
	PatientName  *string    `json:"patient_name,omitempty"`
	PatientPhone *string    `json:"patient_phone,omitempty"`
	Modality     *string    `json:"modality,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	BookedAt     *time.Time `json:"booked_at,omitempty"`
}

func newSlotResponse(s slot.Slot) SlotResponse {
	resp := SlotResponse{
		ID:        s.ID,
		Date:      s.ScheduledAt.Format("2006-01-02"),
		Time:      s.ScheduledAt.Format("15:04"),
		Available: s.Available,
		CreatedAt: s.CreatedAt,
		BookedAt:  s.BookedAt,
	}
	resp.PatientName = s.PatientName
	resp.PatientPhone = s.PatientPhone
	if s.Modality != nil {
		m := string(*s.Modality)
		resp.Modality = &m
	}
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
