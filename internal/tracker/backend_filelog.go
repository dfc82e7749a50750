//go:build !catalyst_sqlite

package tracker

import (
	"github.com/basket/catalyst/internal/tracker/filelog"
)

// OpenDefaultStore opens the zero-dependency NDJSON backend rooted at
// stateDir (one file per session: <stateDir>/<session_id>.log). Built
// only without the catalyst_sqlite tag; see backend_sqlite.go for the
// alternative build.
func OpenDefaultStore(stateDir string) (Store, error) {
	return filelog.Open(stateDir)
}

// DefaultBackendName identifies the compiled-in Store implementation, for
// diagnostics (e.g. `catalyst status`).
const DefaultBackendName = "filelog"
