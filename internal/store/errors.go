package store

import "fmt"

// StorageError reports a persistence I/O failure. The triggering message is
// neither stored nor broadcast.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
