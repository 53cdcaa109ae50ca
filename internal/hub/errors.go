package hub

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports an inbound field over its size limit. The message is
// dropped without being persisted or broadcast; the connection stays open.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ProtocolError reports an inbound frame that does not parse as the expected
// shape. The session treats it as a disconnect.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed frame: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a failed send to a single peer during fan-out. The
// peer is reaped from the registry; delivery to the rest continues.
type DeliveryError struct {
	ConnID uuid.UUID
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.ConnID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
