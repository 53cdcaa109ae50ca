package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialPeer upgrades a loopback connection and wraps the server side in a peer.
func dialPeer(t *testing.T, sendBuffer int) *peer {
	t.Helper()

	peers := make(chan *peer, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		peers <- newPeer(socket, sendBuffer, time.Second)
		select {} // hold the handler open for the test's lifetime
	}))
	t.Cleanup(srv.CloseClientConnections)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case p := <-peers:
		t.Cleanup(func() { _ = p.Close() })
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no peer established")
		return nil
	}
}

func TestPeerSendNeverBlocks(t *testing.T) {
	// No writePump running, so the queue fills and stays full.
	p := dialPeer(t, 1)

	if err := p.Send([]byte("one")); err != nil {
		t.Fatalf("first send: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- p.Send([]byte("two")) }()
	select {
	case err := <-done:
		if !errors.Is(err, errSendBufferFull) {
			t.Fatalf("expected buffer-full error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
}

func TestPeerSendAfterClose(t *testing.T) {
	p := dialPeer(t, 1)

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if err := p.Send([]byte("late")); !errors.Is(err, errPeerClosed) {
		t.Fatalf("expected peer-closed error, got %v", err)
	}
}

func TestPeerWritePumpDrainsQueue(t *testing.T) {
	p := dialPeer(t, 4)
	go p.writePump()

	for i := 0; i < 8; i++ {
		if err := p.Send([]byte("ping body")); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
