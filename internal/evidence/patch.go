// Package evidence turns raw media selections into immutable payloads the
// state machine can attach to a transition. Payloads are opaque encoded
// strings (base64 data URLs); the core never decodes or validates image
// content beyond the data-URL shape.
package evidence

import "strings"

// Signature is a captured signature bitmap plus the signer's name.
type Signature struct {
	Data       string `json:"data"`
	SignerName string `json:"signer_name"`
}

// Patch is the evidence handed to the state machine alongside a
// transition. Once built it is value-copied everywhere; a nil field means
// "leave that slot untouched", a non-nil field replaces the slot
// entirely, never merges.
type Patch struct {
	CollectionPhoto *string
	// DeliveryPhotos replaces the whole ordered slot when non-nil.
	DeliveryPhotos []string
	Signature      *Signature
	DisputeReason  *string
	DriverNotes    *string
}

// Empty reports whether the patch carries no evidence at all.
func (p Patch) Empty() bool {
	return p.CollectionPhoto == nil &&
		p.DeliveryPhotos == nil &&
		p.Signature == nil &&
		p.DisputeReason == nil &&
		p.DriverNotes == nil
}

// Clone returns a deep copy so stored jobs never alias caller memory.
func (p Patch) Clone() Patch {
	out := p
	if p.CollectionPhoto != nil {
		v := *p.CollectionPhoto
		out.CollectionPhoto = &v
	}
	if p.DeliveryPhotos != nil {
		out.DeliveryPhotos = append([]string(nil), p.DeliveryPhotos...)
	}
	if p.Signature != nil {
		v := *p.Signature
		out.Signature = &v
	}
	if p.DisputeReason != nil {
		v := *p.DisputeReason
		out.DisputeReason = &v
	}
	if p.DriverNotes != nil {
		v := *p.DriverNotes
		out.DriverNotes = &v
	}
	return out
}

// HasSignature reports whether the patch carries a non-blank signature
// payload. Presence is the only contract; quality is never validated.
func (p Patch) HasSignature() bool {
	return p.Signature != nil && strings.TrimSpace(p.Signature.Data) != ""
}

// IsDataURL checks the payload shape without decoding the content.
func IsDataURL(s string) bool {
	if !strings.HasPrefix(s, "data:") {
		return false
	}
	return strings.Contains(s, ";base64,")
}
