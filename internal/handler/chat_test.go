package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/civic-sync/internal/model"
)

func TestChatHandler(t *testing.T) {
	env := newTestEnv(t)
	general := map[string]string{"room": "general"}

	rr := serve(env.chat.HandleRooms, request{method: http.MethodGet, target: "/api/chat/rooms"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.ChatRoom](t, rr), 4)

	for _, text := range []string{"first", "second", "third"} {
		rr = serve(env.chat.HandlePost, request{
			method: http.MethodPost, target: "/api/chat/rooms/general/messages", as: &citizen,
			path: general, body: map[string]string{"text": text},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr = serve(env.chat.HandleMessages, request{method: http.MethodGet, target: "/api/chat/rooms/general/messages?limit=2", path: general})
	require.Equal(t, http.StatusOK, rr.Code)
	msgs := decode[[]model.ChatMessage](t, rr)
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Text)
	assert.Equal(t, "third", msgs[1].Text)
	assert.Equal(t, citizen.Name, msgs[1].AuthorName)

	rr = serve(env.chat.HandleMessages, request{method: http.MethodGet, target: "/api/chat/rooms/general/messages?limit=zero", path: general})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(env.chat.HandleMessages, request{method: http.MethodGet, target: "/api/chat/rooms/lobby/messages", path: map[string]string{"room": "lobby"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(env.chat.HandlePost, request{
		method: http.MethodPost, target: "/api/chat/rooms/general/messages", as: &citizen,
		path: general, body: map[string]string{"text": "  "},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
