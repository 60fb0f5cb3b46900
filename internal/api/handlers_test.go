package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agendafacil/agenda-service/internal/chat"
	"github.com/agendafacil/agenda-service/internal/slot"
	"github.com/agendafacil/agenda-service/pkg/logging"
)

func newTestServer(t *testing.T) (*httptest.Server, *slot.MemoryStore) {
	t.Helper()

	store := slot.NewMemoryStore()
	sessions := chat.NewMemorySessionStore(30 * time.Minute)
	engine := chat.NewEngine(store, sessions, 14, logging.Default(), nil)

	router := NewRouter(RouterConfig{
		Engine:        engine,
		Store:         store,
		Logger:        logging.Default(),
		WindowDays:    14,
		AdminUser:     "admin",
		AdminPassword: "s3cret",
		JWTSecret:     "test-secret",
		Env:           "test",
		Version:       "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func adminToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/admin/login", "", LoginRequest{Username: "admin", Password: "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[LoginResponse](t, resp).Token
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/chat", "", ChatRequest{Message: "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[ErrorResponse](t, resp)
	require.Equal(t, "empty_message", body.Error)
}

func TestChatMintsSessionIDAndKeepsIt(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/chat", "", ChatRequest{Message: "quero marcar uma consulta"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeBody[ChatResponse](t, resp)
	require.NotEmpty(t, first.SessionID)
	require.Contains(t, first.Reply, "nome completo")

	resp = postJSON(t, srv.URL+"/chat", "", ChatRequest{Message: "Maria Silva", SessionID: first.SessionID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeBody[ChatResponse](t, resp)
	require.Equal(t, first.SessionID, second.SessionID)
	require.Contains(t, second.Reply, "telefone")
}

func TestChatOfferedOptionsAtSlotSelection(t *testing.T) {
	srv, store := newTestServer(t)
	at := slot.AtMinute(time.Now().AddDate(0, 0, 3))
	_, err := store.Insert(context.Background(), at)
	require.NoError(t, err)

	sessionID := ""
	for _, msg := range []string{"quero marcar uma consulta", "Maria Silva"} {
		resp := postJSON(t, srv.URL+"/chat", "", ChatRequest{Message: msg, SessionID: sessionID})
		body := decodeBody[ChatResponse](t, resp)
		sessionID = body.SessionID
	}

	resp := postJSON(t, srv.URL+"/chat", "", ChatRequest{Message: "85999998888", SessionID: sessionID})
	body := decodeBody[ChatResponse](t, resp)
	require.Equal(t, []string{at.Format("02/01/2006 15:04")}, body.Options)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/admin/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminSlotsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/admin/slots/")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/admin/slots/", "not-a-token", AddSlotRequest{Date: "2026-12-18", Time: "14:00"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminAddSlotAndDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	token := adminToken(t, srv)

	resp := postJSON(t, srv.URL+"/admin/slots/", token, AddSlotRequest{Date: "2026-12-18", Time: "14:00"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[SlotResponse](t, resp)
	require.Equal(t, "2026-12-18", created.Date)
	require.Equal(t, "14:00", created.Time)
	require.True(t, created.Available)

	resp = postJSON(t, srv.URL+"/admin/slots/", token, AddSlotRequest{Date: "2026-12-18", Time: "14:00"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[ErrorResponse](t, resp)
	require.Equal(t, "duplicate_slot", body.Error)
}

func TestAdminAddSlotRejectsBadTime(t *testing.T) {
	srv, _ := newTestServer(t)
	token := adminToken(t, srv)

	resp := postJSON(t, srv.URL+"/admin/slots/", token, AddSlotRequest{Date: "18/12/2026", Time: "14h"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminListBookedAndRelease(t *testing.T) {
	srv, store := newTestServer(t)
	token := adminToken(t, srv)
	ctx := context.Background()

	at := time.Date(2026, 12, 18, 14, 0, 0, 0, time.Local)
	created, err := store.Insert(ctx, at)
	require.NoError(t, err)
	ok, err := store.Claim(ctx, at, "Maria Silva", "85999998888", slot.ModalityOnline)
	require.NoError(t, err)
	require.True(t, ok)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/slots/?status=booked", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	booked := decodeBody[[]SlotResponse](t, resp)
	require.Len(t, booked, 1)
	require.NotNil(t, booked[0].PatientName)
	require.Equal(t, "Maria Silva", *booked[0].PatientName)

	resp = postJSON(t, srv.URL+"/admin/slots/"+itoa(created.ID)+"/release", token, struct{}{})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	open, err := store.ListAvailable(ctx, at, at)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Nil(t, open[0].PatientName)
}

func TestAdminDeleteSlots(t *testing.T) {
	srv, store := newTestServer(t)
	token := adminToken(t, srv)
	ctx := context.Background()

	base := time.Date(2026, 12, 18, 8, 0, 0, 0, time.Local)
	a, err := store.Insert(ctx, base)
	require.NoError(t, err)
	b, err := store.Insert(ctx, base.Add(time.Hour))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/slots/"+itoa(a.ID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/admin/slots/delete", token, DeleteSlotsRequest{IDs: []int64{b.ID}})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	open, err := store.ListAvailable(ctx, base, base)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decodeBody[ReadinessResponse](t, resp)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "memory", ready.Dependencies["postgres"])
	require.Equal(t, "memory", ready.Dependencies["redis"])
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
