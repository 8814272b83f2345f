package logstream_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"

	"github.com/hrops-lab/schedctl/pkg/service/logstream"
)

var upgrader = websocket.Upgrader{}

func TestStream_RetainsRecentRecords(t *testing.T) {
	const sent = 15

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/ws/logs/7")

		conn, err := upgrader.Upgrade(w, r, nil)
		gt.NoError(t, err).Required()
		defer conn.Close()

		for i := 0; i < sent; i++ {
			gt.NoError(t, conn.WriteJSON(map[string]string{
				"timestamp": fmt.Sprintf("2026-09-01T00:00:%02dZ", i),
				"message":   fmt.Sprintf("log %d", i),
			}))
		}
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	stream, err := logstream.New(wsURL, "7")
	gt.NoError(t, err).Required()

	gt.NoError(t, stream.Start(context.Background())).Required()
	defer stream.Close()

	// Drain until all records arrived
	for i := 0; i < sent; i++ {
		select {
		case <-stream.Events():
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for log records")
		}
	}

	recent := stream.Recent()
	gt.Array(t, recent).Length(logstream.DefaultRetention)
	gt.Value(t, recent[0].Message).Equal("log 5")
	gt.Value(t, recent[len(recent)-1].Message).Equal("log 14")
}

func TestStream_CustomRetention(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		gt.NoError(t, err).Required()
		defer conn.Close()

		for i := 0; i < 5; i++ {
			gt.NoError(t, conn.WriteJSON(map[string]string{
				"timestamp": "2026-09-01T00:00:00Z",
				"message":   fmt.Sprintf("log %d", i),
			}))
		}
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	stream, err := logstream.New(wsURL, "7", logstream.WithRetention(2))
	gt.NoError(t, err).Required()
	gt.NoError(t, stream.Start(context.Background())).Required()
	defer stream.Close()

	for i := 0; i < 5; i++ {
		select {
		case <-stream.Events():
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for log records")
		}
	}

	recent := stream.Recent()
	gt.Array(t, recent).Length(2)
	gt.Value(t, recent[1].Message).Equal("log 4")
}

func TestNew_RequiresUserID(t *testing.T) {
	_, err := logstream.New("ws://localhost:8001", "")
	gt.Value(t, err).NotNil()
}
