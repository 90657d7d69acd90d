package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StatusEvent is a single audit trail entry. Entries are immutable once
// appended; total order is append order.
type StatusEvent struct {
	Status    JobStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusHistory is the append-only audit trail of a job. There is no
// update or delete operation: Append is the only writer, and it returns a
// new slice rather than mutating the receiver.
type StatusHistory []StatusEvent

// Append returns a new history with the entry added. The receiver is
// never modified, so a history handed to a caller stays stable even if
// the job record moves on.
func (h StatusHistory) Append(ev StatusEvent) StatusHistory {
	out := make(StatusHistory, len(h), len(h)+1)
	copy(out, h)
	return append(out, ev)
}

// Last returns the most recent entry, if any.
func (h StatusHistory) Last() (StatusEvent, bool) {
	if len(h) == 0 {
		return StatusEvent{}, false
	}
	return h[len(h)-1], true
}

// Clone returns a copy of the history.
func (h StatusHistory) Clone() StatusHistory {
	if h == nil {
		return nil
	}
	out := make(StatusHistory, len(h))
	copy(out, h)
	return out
}

// Value implements driver.Valuer so the history persists as a JSONB array
// of {status, timestamp} objects.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal status history: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner. Unknown statuses in stored history are
// rejected here rather than passed through; JobStatus.UnmarshalText does
// the per-entry validation.
func (h *StatusHistory) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*h = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported status history source type %T", src)
	}
	if len(b) == 0 {
		*h = nil
		return nil
	}
	var out StatusHistory
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("unmarshal status history: %w", err)
	}
	*h = out
	return nil
}
