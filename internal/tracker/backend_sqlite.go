//go:build catalyst_sqlite

package tracker

import (
	"path/filepath"

	"github.com/basket/catalyst/internal/tracker/sqlitestore"
)

// OpenDefaultStore opens the opt-in SQLite-indexed backend at
// <stateDir>/tracker.db. Built only with the catalyst_sqlite tag; see
// backend_filelog.go for the default build.
func OpenDefaultStore(stateDir string) (Store, error) {
	return sqlitestore.Open(filepath.Join(stateDir, "tracker.db"))
}

// DefaultBackendName identifies the compiled-in Store implementation, for
// diagnostics (e.g. `catalyst status`).
const DefaultBackendName = "sqlite"
