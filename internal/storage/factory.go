package storage

import (
	"errors"
	"fmt"
)

const DefaultStoreKind = "memory"

var ErrBackendUnavailable = errors.New("store backend unavailable in this build")

// NewStore builds a backend by name. path is the sqlite file or the badger
// directory; the memory backend ignores it.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(path)
	case "badger":
		return NewBadgerStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
