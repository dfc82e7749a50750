package platform

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// PathTraversalDetected is always fatal; it is never retried or forced.
type PathTraversalDetected struct {
	SkillID  string
	Attempt  string
	Reason   string
}

func (e *PathTraversalDetected) Error() string {
	return fmt.Sprintf("path traversal detected for skill %q: %s (%s)", e.SkillID, e.Attempt, e.Reason)
}

// ValidSkillID reports whether id matches the SkillRule slug invariant.
func ValidSkillID(id string) bool {
	return slugPattern.MatchString(id)
}

// GuardSkillPath resolves base/.claude/skills/<skillID>/<relPath> and
// verifies the canonicalized result still lives under the canonicalized
// bundle directory. It rejects absolute relPath values, ".." segments that
// escape the bundle, and (after normalizing any \\?\ UNC prefix) Windows
// paths that use device syntax to dodge the check.
func GuardSkillPath(projectRoot, skillID, relPath string) (string, error) {
	if !ValidSkillID(skillID) {
		return "", &PathTraversalDetected{SkillID: skillID, Attempt: relPath, Reason: "invalid skill id"}
	}
	if filepath.IsAbs(relPath) {
		return "", &PathTraversalDetected{SkillID: skillID, Attempt: relPath, Reason: "absolute path"}
	}
	bundleDir := filepath.Join(projectRoot, ".claude", "skills", skillID)
	canonicalBundle := stripUNCPrefix(filepath.Clean(bundleDir))

	target := filepath.Join(bundleDir, relPath)
	canonicalTarget := stripUNCPrefix(filepath.Clean(target))

	if canonicalTarget != canonicalBundle &&
		!strings.HasPrefix(canonicalTarget, canonicalBundle+string(filepath.Separator)) {
		return "", &PathTraversalDetected{
			SkillID: skillID,
			Attempt: relPath,
			Reason:  "resolved path escapes bundle directory",
		}
	}
	return canonicalTarget, nil
}

func stripUNCPrefix(p string) string {
	return strings.TrimPrefix(p, `\\?\`)
}
