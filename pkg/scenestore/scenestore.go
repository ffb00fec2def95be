// Package scenestore persists scene documents by id for the preview server.
//
// Backends:
//   - memory: in-process map for tests and single-instance servers
//   - file: one JSON file per scene in a directory
//   - mongo: a MongoDB collection shared by several server instances
//
// Records hold the scene in its iwf.json encoding, so anything the file
// format carries (metadata, unknown widget attributes) survives storage.
//
//	rec, err := scenestore.NewRecord(doc)
//	if err != nil {
//	    return err
//	}
//	if err := store.Put(ctx, rec); err != nil {
//	    return err
//	}
//	rec, err = store.Get(ctx, rec.ID)
package scenestore

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/io"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// Record is one stored scene.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Scene     json.RawMessage `json:"scene" bson:"scene"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// NewRecord encodes doc under a fresh random id.
func NewRecord(doc *scene.Document) (*Record, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := io.WriteScene(&buf, doc); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Name:      doc.Name(),
		Scene:     json.RawMessage(bytes.TrimSpace(buf.Bytes())),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Document decodes the stored scene.
func (r *Record) Document() (*scene.Document, error) {
	return io.ReadScene(bytes.NewReader(r.Scene))
}

// Store is the interface for scene storage backends.
type Store interface {
	// Get returns the record for id, or a SCENE_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// Put inserts or replaces a record.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every record, newest first.
	List(ctx context.Context) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}

// ValidateID checks that id is a UUID. Ids become file names and query
// keys, so anything else is rejected before a backend sees it.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid scene id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSceneNotFound, "scene %s not found", id)
}
