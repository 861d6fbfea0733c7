package connection_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	mc "github.com/saeidalz13/battleship-duel/models/connection"
)

// Returns the server side session and the raw client connection.
func newWsPair(t *testing.T, readTimeout time.Duration) (*mc.WsSession, *websocket.Conn) {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	var session *mc.WsSession
	select {
	case conn := <-conns:
		session = mc.NewWsSession(conn, readTimeout, nil)
	case <-time.After(time.Second * 5):
		t.Fatal("server never upgraded the connection")
	}
	t.Cleanup(func() { session.Close() })

	return session, client
}

func TestWsSessionReadLine(t *testing.T) {
	session, client := newWsPair(t, time.Second*5)

	if err := client.WriteMessage(websocket.BinaryMessage, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	if err := client.WriteMessage(websocket.TextMessage, []byte("start;C3\n")); err != nil {
		t.Fatal(err)
	}

	line, err := session.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != "start;C3" {
		t.Fatalf("expected line: %q\tgot: %q", "start;C3", line)
	}
}

func TestWsSessionSendLine(t *testing.T) {
	session, client := newWsPair(t, time.Second*5)

	if err := session.SendLine("trafiony;J10"); err != nil {
		t.Fatal(err)
	}

	messageType, payload, err := client.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if messageType != websocket.TextMessage || string(payload) != "trafiony;J10" {
		t.Fatalf("expected text frame %q, got type %d: %q", "trafiony;J10", messageType, payload)
	}
}

func TestWsSessionTimeoutKeepsConnectionUsable(t *testing.T) {
	session, client := newWsPair(t, time.Millisecond*50)

	if _, err := session.ReadLine(); !mc.IsTimeout(err) {
		t.Fatalf("expected read timeout, got: %v", err)
	}

	if err := client.WriteMessage(websocket.TextMessage, []byte("pudło;A2")); err != nil {
		t.Fatal(err)
	}

	var (
		line string
		err  error
	)
	for i := 0; i < 50; i++ {
		line, err = session.ReadLine()
		if !mc.IsTimeout(err) {
			break
		}
	}
	if err != nil {
		t.Fatal(err)
	}
	if line != "pudło;A2" {
		t.Fatalf("expected line: %q\tgot: %q", "pudło;A2", line)
	}
}

func TestWsSessionPeerClosed(t *testing.T) {
	session, client := newWsPair(t, time.Second*5)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	if err := client.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	_, err := session.ReadLine()
	if code := mc.ConnErrCode(err); err == nil || code != mc.ConnLoopBreak {
		t.Fatalf("expected break error, got: %v", err)
	}

	// stays closed
	if _, err := session.ReadLine(); mc.ConnErrCode(err) != mc.ConnLoopBreak || err == nil {
		t.Fatalf("expected break error, got: %v", err)
	}
}
