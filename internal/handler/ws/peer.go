package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// pongWait is how long a connection may stay silent before its reads fail.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait so pongs arrive in time.
	pingPeriod = 54 * time.Second
)

var (
	errPeerClosed     = errors.New("peer closed")
	errSendBufferFull = errors.New("peer send buffer full")
)

// peer adapts a websocket connection to hub.Sender. Outbound frames go through
// a buffered channel drained by writePump, so hub fan-out never blocks on a
// slow reader: a full queue fails the send immediately.
type peer struct {
	socket       *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func newPeer(socket *websocket.Conn, sendBuffer int, writeTimeout time.Duration) *peer {
	return &peer{
		socket:       socket,
		send:         make(chan []byte, sendBuffer),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// Send queues one frame for delivery. It never blocks: a closed peer or a full
// queue returns an error so the hub can reap this connection.
func (p *peer) Send(payload []byte) error {
	select {
	case <-p.done:
		return errPeerClosed
	default:
	}

	select {
	case p.send <- payload:
		return nil
	case <-p.done:
		return errPeerClosed
	default:
		return errSendBufferFull
	}
}

// Close shuts the connection down. Safe to call from any goroutine, any number
// of times; closing the socket also unblocks the session's read loop.
func (p *peer) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.socket.Close()
	})
	return nil
}

// writePump serializes all writes to the socket and keeps the connection alive
// with periodic pings. A write failure closes the peer, which drives the read
// loop into its disconnect path.
func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer p.Close()

	for {
		select {
		case <-p.done:
			return
		case payload := <-p.send:
			_ = p.socket.SetWriteDeadline(time.Now().Add(p.writeTimeout))
			if err := p.socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.socket.SetWriteDeadline(time.Now().Add(p.writeTimeout))
			if err := p.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
