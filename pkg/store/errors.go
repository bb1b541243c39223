package store

import (
	"errors"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

var (
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrNotFound           = errors.New("not found")
	ErrImmutableField     = errors.New("immutable field")
	ErrLegalHoldBlock     = errors.New("record is under legal hold")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrResetNotConfirmed  = errors.New("factory reset not confirmed")

	// ErrInvalid is returned for entities that fail validation.
	ErrInvalid = model.ErrInvalid
)
