package durability

import (
	"context"
	"fmt"

	"github.com/cyberarian/rekama-sys/pkg/seal"
)

var _ Backend = (*Sealed)(nil)

// SnapshotAAD binds sealed images to their purpose.
var SnapshotAAD = []byte("rekama:snapshot")

// Sealed encrypts images before handing them to the wrapped Backend.
type Sealed struct {
	Backend Backend
	Cipher  seal.Cipher
}

func NewSealed(backend Backend, cipher seal.Cipher) *Sealed {
	return &Sealed{Backend: backend, Cipher: cipher}
}

func (s *Sealed) Load(ctx context.Context) ([]byte, error) {
	sealed, err := s.Backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	image, err := s.Cipher.Open(SnapshotAAD, sealed)
	if err != nil {
		return nil, fmt.Errorf("open sealed snapshot: %w", err)
	}
	return image, nil
}

func (s *Sealed) Save(ctx context.Context, image []byte) error {
	sealed, err := s.Cipher.Seal(SnapshotAAD, image)
	if err != nil {
		return fmt.Errorf("seal snapshot: %w", err)
	}
	return s.Backend.Save(ctx, sealed)
}

func (s *Sealed) Reset(ctx context.Context) error {
	return s.Backend.Reset(ctx)
}
