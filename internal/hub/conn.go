package hub

import "github.com/google/uuid"

// Sender delivers one encoded frame to a peer. Implementations must not block
// on a slow peer: a send that cannot proceed immediately returns an error so
// fan-out to the remaining peers continues.
type Sender interface {
	Send(payload []byte) error
	Close() error
}

// Conn is one live connection tracked by the registry. Identity is the opaque
// generated ID, not the display name (names are not unique).
type Conn struct {
	ID       uuid.UUID
	Username string
	sender   Sender
}

func newConn(sender Sender, username string) *Conn {
	return &Conn{ID: uuid.New(), Username: username, sender: sender}
}
