// Package store defines the document store the scheduling service persists to.
// Records are JSON documents addressed by a collection path and an id, e.g.
// appointments/{therapistId}/{appointmentId}.
package store

import (
	"context"
	"encoding/json"
)

// Snapshot full current value of a collection keyed by document id
type Snapshot map[string]json.RawMessage

// Patch merge-patch: listed fields replace stored ones, nil values remove fields
type Patch map[string]interface{}

// Store CRUD + subscribe over document collections
type Store interface {
	// Put upserts a document
	Put(ctx context.Context, collection, id string, value json.RawMessage) error
	// Get returns one document or ErrNotFound
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// List returns the whole collection; empty snapshot if it does not exist
	List(ctx context.Context, collection string) (Snapshot, error)
	// Update merge-patches an existing document or returns ErrNotFound
	Update(ctx context.Context, collection, id string, patch Patch) error
	// UpdateIf merge-patches a document only while its top-level string field equals expected.
	// The check and the write are atomic; a mismatch returns ErrConditionFailed.
	UpdateIf(ctx context.Context, collection, id, field, expected string, patch Patch) error
	// Delete removes a document; deleting a missing document is not an error
	Delete(ctx context.Context, collection, id string) error
	// Subscribe pushes the full collection on subscription and after every mutation.
	// The returned function stops delivery; cancelling ctx does the same.
	Subscribe(ctx context.Context, collection string, onChange func(Snapshot), onError func(error)) (func(), error)
}

// BatchWriter optional capability: write several documents of one collection atomically
type BatchWriter interface {
	PutAll(ctx context.Context, collection string, docs Snapshot) error
}
