package evidence

import (
	"errors"
	"fmt"
)

// PhotoSet accumulates photographic evidence before a transition is
// attempted. The collection slot holds exactly zero or one photo; the
// delivery slot is an ordered list that grows by appending. Re-capturing
// a slot replaces it wholesale.
type PhotoSet struct {
	collection *string
	delivery   []string
}

// ErrNotDataURL is returned when a payload is not a base64 data URL.
var ErrNotDataURL = errors.New("payload is not a base64 data URL")

// SetCollection stores the single collection photo, replacing any
// previous one.
func (s *PhotoSet) SetCollection(dataURL string) error {
	if !IsDataURL(dataURL) {
		return fmt.Errorf("collection photo: %w", ErrNotDataURL)
	}
	v := dataURL
	s.collection = &v
	return nil
}

// ClearCollection removes the collection photo. An empty collection slot
// is treated as an explicit waiver at the in-transit edge.
func (s *PhotoSet) ClearCollection() {
	s.collection = nil
}

// AddDelivery appends delivery photos in order.
func (s *PhotoSet) AddDelivery(dataURLs ...string) error {
	for i, u := range dataURLs {
		if !IsDataURL(u) {
			return fmt.Errorf("delivery photo %d: %w", i, ErrNotDataURL)
		}
	}
	s.delivery = append(s.delivery, dataURLs...)
	return nil
}

// ReplaceDelivery discards the delivery slot and stores the given photos.
// Replacement never merges with previous captures.
func (s *PhotoSet) ReplaceDelivery(dataURLs ...string) error {
	for i, u := range dataURLs {
		if !IsDataURL(u) {
			return fmt.Errorf("delivery photo %d: %w", i, ErrNotDataURL)
		}
	}
	s.delivery = append([]string(nil), dataURLs...)
	return nil
}

// Collection returns the collection photo, or nil when waived.
func (s *PhotoSet) Collection() *string {
	if s.collection == nil {
		return nil
	}
	v := *s.collection
	return &v
}

// Delivery returns a copy of the ordered delivery photos.
func (s *PhotoSet) Delivery() []string {
	if s.delivery == nil {
		return nil
	}
	return append([]string(nil), s.delivery...)
}

// DeliveryCount returns the number of delivery photos captured.
func (s *PhotoSet) DeliveryCount() int {
	return len(s.delivery)
}
