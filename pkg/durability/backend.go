package durability

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Backend stores a single opaque snapshot.
type Backend interface {
	// Load returns the last saved image or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)
	// Save durably replaces the image. The previous image must survive a
	// failed Save.
	Save(ctx context.Context, image []byte) error
	// Reset discards the image. Load returns ErrNoSnapshot afterwards.
	Reset(ctx context.Context) error
}
