package listener

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-testutil"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestWebsocketListener_Session(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cm := NewConnectionManager(&echoRunner{}, logger)
	l := NewWebsocketListener(0, cm, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + wsPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		t.Fatalf("dialing: %v", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("stats")); err != nil {
		t.Fatalf("writing: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	typ, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	testutil.AssertEqual(t, "type", typ, websocket.TextMessage)
	testutil.AssertEqual(t, "reply", string(msg), "echo: stats\n")
	_ = conn.Close()

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("unexpected error from serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not shut down")
	}
}
