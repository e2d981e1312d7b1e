package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/civic-sync/internal/auth"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/handler"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/seed"
	"github.com/sakif/civic-sync/internal/service"
	"github.com/sakif/civic-sync/internal/store"
)

var testEpoch = time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)

var (
	citizen = auth.Identity{UserID: store.MockCitizenID, Role: model.RoleCitizen, Name: "Rahul Sharma"}
	admin   = auth.Identity{UserID: store.MockAdminID, Role: model.RoleAdmin, Name: "Admin User"}
)

// testEnv holds every handler wired to seeded in-memory stores.
type testEnv struct {
	clock   *clock.FakeClock
	tokens  *auth.TokenService
	auth    *handler.AuthHandler
	issues  *handler.IssueHandler
	events  *handler.EventHandler
	tickets *handler.TicketHandler
	chat    *handler.ChatHandler
	admin   *handler.AdminHandler
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := newTestLogger()
	c := clock.Fake(testEpoch)

	issueStore := store.NewIssueStore(c, seed.Issues())
	eventStore := store.NewEventStore(c, seed.Events())
	ticketStore := store.NewTicketStore(c, nil)
	require.NoError(t, ticketStore.Load(context.Background(), seed.Tickets()))
	sessions := store.NewAuthStore(c)

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	authService, err := service.NewAuthService(service.AuthModeMock, testAdminCode, sessions, nil, tokens, nil, logger)
	require.NoError(t, err)

	return &testEnv{
		clock:   c,
		tokens:  tokens,
		auth:    handler.NewAuthHandler(authService, tokens, logger),
		issues:  handler.NewIssueHandler(service.NewIssueService(issueStore, c, logger), logger),
		events:  handler.NewEventHandler(service.NewEventService(eventStore, c, logger), logger),
		tickets: handler.NewTicketHandler(service.NewTicketService(ticketStore, logger), logger),
		chat:    handler.NewChatHandler(service.NewChatService(store.NewChatStore(c, 50), logger), logger),
		admin:   handler.NewAdminHandler(service.NewReportService(issueStore, eventStore, ticketStore, c), logger),
	}
}

const testAdminCode = "ADMIN2025"

// request describes one call to a handler.
type request struct {
	method string
	target string
	body   any
	as     *auth.Identity
	path   map[string]string
}

// serve calls h directly, the way chi would after routing: path values set,
// identity in the context as RequireAuth leaves it.
func serve(h http.HandlerFunc, req request) *httptest.ResponseRecorder {
	var body io.Reader = http.NoBody
	switch b := req.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(req.method, req.target, body)
	r.Header.Set("Content-Type", "application/json")
	for k, v := range req.path {
		r.SetPathValue(k, v)
	}
	if req.as != nil {
		r = r.WithContext(auth.WithIdentity(r.Context(), *req.as))
	}

	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
