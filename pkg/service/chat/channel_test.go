package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	"github.com/hrops-lab/schedctl/pkg/domain/model"
	"github.com/hrops-lab/schedctl/pkg/domain/types"
	"github.com/hrops-lab/schedctl/pkg/service/chat"
)

var upgrader = websocket.Upgrader{}

func wsBaseURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitEvent(t *testing.T, ch *chat.Channel) model.ChatMessage {
	t.Helper()
	select {
	case msg := <-ch.Events():
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for chat event")
		return model.ChatMessage{}
	}
}

func TestChannel_SendWhileClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ch, err := chat.New(wsBaseURL(srv), model.NewSession("7", "t"))
	gt.NoError(t, err).Required()

	// Never started: the socket is not open, sends are rejected, not queued
	err = ch.Send(context.Background(), "hello")
	gt.B(t, errors.Is(err, chat.ErrNotConnected)).True()
	gt.Array(t, ch.Transcript()).Length(0)
}

func TestChannel_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/ws/chat/7")
		gt.Value(t, r.URL.Query().Get("token")).Equal("t")

		conn, err := upgrader.Upgrade(w, r, nil)
		gt.NoError(t, err).Required()
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		gt.NoError(t, err).Required()

		var frame map[string]string
		gt.NoError(t, json.Unmarshal(data, &frame))
		gt.Value(t, frame["message"]).Equal("hello")

		gt.NoError(t, conn.WriteJSON(map[string]string{
			"role":    "assistant",
			"content": "hi there",
		}))

		// Keep the connection open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ch, err := chat.New(wsBaseURL(srv), model.NewSession("7", "t"))
	gt.NoError(t, err).Required()

	ctx := context.Background()
	gt.NoError(t, ch.Start(ctx)).Required()
	defer ch.Close()

	gt.NoError(t, ch.Send(ctx, "hello"))

	msg := waitEvent(t, ch)
	gt.Value(t, msg.Role).Equal(types.RoleAssistant)
	gt.Value(t, msg.Content).Equal("hi there")

	transcript := ch.Transcript()
	gt.Array(t, transcript).Length(2)
	gt.Value(t, transcript[0].Role).Equal(types.RoleUser)
	gt.Value(t, transcript[0].Content).Equal("hello")
	gt.Value(t, transcript[1].Role).Equal(types.RoleAssistant)
}

func TestChannel_ErrorFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		gt.NoError(t, err).Required()
		defer conn.Close()

		gt.NoError(t, conn.WriteJSON(map[string]string{"error": "model overloaded"}))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ch, err := chat.New(wsBaseURL(srv), model.NewSession("7", "t"))
	gt.NoError(t, err).Required()
	gt.NoError(t, ch.Start(context.Background())).Required()
	defer ch.Close()

	// Error frames are rendered as assistant messages
	msg := waitEvent(t, ch)
	gt.Value(t, msg.Role).Equal(types.RoleAssistant)
	gt.Value(t, msg.Content).Equal("model overloaded")
}

func TestChannel_AuthCloseIsTerminal(t *testing.T) {
	var dials int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials++
		conn, err := upgrader.Upgrade(w, r, nil)
		gt.NoError(t, err).Required()

		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(types.CloseCodeAuthFailed, "token expired"), deadline)
		conn.Close()
	}))
	defer srv.Close()

	ch, err := chat.New(wsBaseURL(srv), model.NewSession("7", "t"),
		chat.WithReconnectDelay(time.Millisecond))
	gt.NoError(t, err).Required()
	gt.NoError(t, ch.Start(context.Background())).Required()

	select {
	case <-ch.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not terminate on auth close")
	}

	gt.B(t, errors.Is(ch.Err(), chat.ErrAuthClosed)).True()
	gt.Number(t, dials).Equal(1)

	msg := waitEvent(t, ch)
	gt.B(t, strings.Contains(msg.Content, "log in again")).True()
}

func TestChannel_ReconnectExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		gt.NoError(t, err).Required()
		conn.Close()
	}))

	ch, err := chat.New(wsBaseURL(srv), model.NewSession("7", "t"),
		chat.WithReconnectDelay(time.Millisecond),
		chat.WithReconnectLimit(3))
	gt.NoError(t, err).Required()
	gt.NoError(t, ch.Start(context.Background())).Required()

	// Every reconnection attempt from here on fails at the transport level
	srv.Close()

	select {
	case <-ch.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not give up reconnecting")
	}

	gt.B(t, errors.Is(ch.Err(), chat.ErrReconnectExhausted)).True()

	// The terminal notice is the last delivered event
	var last model.ChatMessage
	for {
		select {
		case msg := <-ch.Events():
			last = msg
			continue
		default:
		}
		break
	}
	gt.B(t, strings.Contains(last.Content, "refresh")).True()
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := chat.New("ws://localhost:8003", model.NewSession("", ""))
	gt.Value(t, err).NotNil()

	_, err = chat.New("ws://localhost:8003", model.NewSession("7", ""))
	gt.Value(t, err).NotNil()
}
