package durability

import (
	"context"
	"sync"
)

var _ Backend = (*Memory)(nil)

// Memory keeps the snapshot in process memory.
type Memory struct {
	mu    sync.Mutex
	image []byte
	saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.image == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), m.image...), nil
}

func (m *Memory) Save(ctx context.Context, image []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = append(make([]byte, 0, len(image)), image...)
	m.saves++
	return nil
}

func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = nil
	return nil
}

// Saves returns how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
