// Package record defines the generic record contract shared by the entity
// stores and the payloads of the portfolio domain.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	jsonpatch "gopkg.in/evanphx/json-patch.v4"
)

// Record is any payload with a unique integer id.
type Record interface {
	GetID() int64
}

// Meta holds the fields every record carries. Embed it to satisfy Record.
type Meta struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Meta) GetID() int64 {
	return m.ID
}

// Patch is a partial record keyed by JSON field name.
type Patch map[string]any

// Apply merges patch into rec following JSON merge patch rules (RFC 7386):
// fields absent from the patch are kept, null fields are cleared.
func Apply[T any](rec T, patch Patch) (T, error) {
	var merged T

	doc, err := json.Marshal(rec)
	if err != nil {
		return merged, fmt.Errorf("encode record: %w", err)
	}
	p, err := json.Marshal(patch)
	if err != nil {
		return merged, fmt.Errorf("encode patch: %w", err)
	}

	out, err := jsonpatch.MergePatch(doc, p)
	if err != nil {
		return merged, fmt.Errorf("merge patch: %w", err)
	}
	if err := json.Unmarshal(out, &merged); err != nil {
		return merged, fmt.Errorf("decode merged record: %w", err)
	}
	return merged, nil
}

// Stamp gives a draft record an id and fresh timestamps.
func Stamp[T any](draft T, id int64, now time.Time) (T, error) {
	return Apply(draft, Patch{
		"id":         id,
		"created_at": now,
		"updated_at": now,
	})
}

// Touch applies patch and bumps updated_at.
func Touch[T any](rec T, patch Patch, now time.Time) (T, error) {
	p := make(Patch, len(patch)+1)
	for k, v := range patch {
		p[k] = v
	}
	p["updated_at"] = now
	return Apply(rec, p)
}

// FromRecord builds a patch holding every non-empty field of rec, used to send
// a full record as an update.
func FromRecord(rec any) (Patch, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	p := Patch{}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// NextID returns one more than the highest id present, or 1 for an empty set.
func NextID[T Record](items []T) int64 {
	var max int64
	for _, it := range items {
		if id := it.GetID(); id > max {
			max = id
		}
	}
	return max + 1
}
