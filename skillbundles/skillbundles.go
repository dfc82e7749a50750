// Package skillbundles embeds catalyst's shipped default skill bundles as
// an immutable compile-time tree, per the "global singleton" guidance for
// embedded resource directories: exposed only through a read-only iterator,
// never mutated in place.
package skillbundles

import "embed"

//go:embed all:skill-developer all:frontend-developer all:test-writer
var FS embed.FS

// IDs lists the skill_id of every bundle embedded in FS, in the order
// init's --all flag installs them.
var IDs = []string{"skill-developer", "frontend-developer", "test-writer"}
