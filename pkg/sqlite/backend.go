// Package sqlite provides the public API for the SQLite session store.
// This package exposes the factory function for creating SQLite stores
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/pathway/internal/sqlite"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

// NewStore creates a new SQLite session store instance.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".pathway-db",
//	})
//	defer store.Detach()
func NewStore() types.SessionStore {
	return sqlite.NewStore()
}
