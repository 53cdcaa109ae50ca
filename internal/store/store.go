// Package store persists chat messages in BadgerDB as an append-only log.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"chathub/internal/model/chat"
)

// DefaultHistoryLimit bounds ListRecent when the caller supplies no usable limit.
const DefaultHistoryLimit = 50

// idBandwidth is the lease size for the badger sequence. Ids inside a lease are
// handed out without touching disk; unused ids are abandoned on Close.
const idBandwidth = 128

var (
	msgPrefix = []byte("msg:")
	seqKey    = []byte("seq:message")
)

// msgKey formats "msg:{id_padded}" with 20-digit zero padding so that
// lexicographical key order equals id order.
func msgKey(id int64) []byte {
	return fmt.Appendf(nil, "msg:%020d", id)
}

// Store is a durable message log. Ids come from a badger sequence, so
// concurrent inserts never collide and ids are never reused.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (or creates) the store at the given directory.
func Open(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return newStore(db)
}

// OpenInMemory opens a store backed by memory only, for tests and local runs.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return newStore(db)
}

func newStore(db *badger.DB) (*Store, error) {
	seq, err := db.GetSequence(seqKey, idBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, &StorageError{Op: "sequence", Err: err}
	}
	return &Store{db: db, seq: seq}, nil
}

// Close releases the id sequence and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return &StorageError{Op: "release sequence", Err: err}
	}
	if err := s.db.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}

// Insert assigns a fresh id and UTC timestamp, durably stores the record and
// returns it in full. On failure nothing is stored and the caller must not
// broadcast the message.
func (s *Store) Insert(_ context.Context, username, content string) (chat.Message, error) {
	next, err := s.seq.Next()
	if err != nil {
		return chat.Message{}, &StorageError{Op: "next id", Err: err}
	}

	msg := chat.Message{
		ID:        int64(next) + 1,
		Username:  username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return chat.Message{}, &StorageError{Op: "encode", Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(msgKey(msg.ID), value)
	})
	if err != nil {
		return chat.Message{}, &StorageError{Op: "insert", Err: err}
	}
	return msg, nil
}

// ListRecent returns up to limit most recently stored messages, oldest-first.
// A non-positive limit falls back to DefaultHistoryLimit. Thanks to the padded
// key a reverse prefix scan visits messages newest-first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var values [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the largest possible key, then walk backwards.
		seekKey := append(append([]byte(nil), msgPrefix...), []byte("99999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(msgPrefix) && len(values) < limit; it.Next() {
			err := it.Item().Value(func(value []byte) error {
				values = append(values, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	messages := make([]chat.Message, 0, len(values))
	for _, value := range values {
		var msg chat.Message
		if err := json.Unmarshal(value, &msg); err != nil {
			return nil, &StorageError{Op: "decode", Err: err}
		}
		messages = append(messages, msg)
	}
	return lo.Reverse(messages), nil
}
