package skills

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/basket/catalyst/internal/hashledger"
	"github.com/basket/catalyst/internal/platform"
)

// Install and Update check every bundle-relative path with
// platform.GuardSkillPath and return its *platform.PathTraversalDetected
// unchanged, so callers type-assert on the platform package's error type.

// Install extracts bundle's files into <skillsRoot>/<skill_id>/, guarding
// every write with platform.GuardSkillPath, and records each file's hash
// into ledger under "<skill_id>/<relpath>". With force=false, an existing
// bundle directory is left untouched and Install returns (false, nil).
func Install(skillsRoot string, bundle Bundle, ledger *hashledger.Ledger, force bool) (installed bool, err error) {
	bundleDir := filepath.Join(skillsRoot, bundle.SkillID)
	if !force {
		if _, statErr := os.Stat(bundleDir); statErr == nil {
			return false, nil
		} else if !os.IsNotExist(statErr) {
			return false, fmt.Errorf("stat bundle dir %s: %w", bundleDir, statErr)
		}
	}

	for _, f := range bundle.Files {
		if _, guardErr := platform.GuardSkillPath(skillsRoot, bundle.SkillID, f.RelPath); guardErr != nil {
			return false, guardErr
		}
		target := filepath.Join(bundleDir, f.RelPath)
		if mkErr := os.MkdirAll(filepath.Dir(target), 0o755); mkErr != nil {
			return false, fmt.Errorf("create dir for %s: %w", target, mkErr)
		}
		if writeErr := platform.AtomicWrite(target, f.Data, 0o644, nil); writeErr != nil {
			return false, fmt.Errorf("write %s: %w", target, writeErr)
		}
		ledger.Set(hashledger.Key(bundle.SkillID, f.RelPath), hashledger.HashBytes(f.Data))
	}
	return true, nil
}

// UpdateResult reports what Update did to one bundle.
type UpdateResult struct {
	SkillID  string
	Updated  bool
	Skipped  bool
	Modified []string // relpaths that were user-modified and skipped
}

// Update re-materializes bundle's files against an existing installation,
// preserving user edits: a file whose current on-disk hash matches the
// ledger's recorded hash is overwritten with the embedded copy and
// re-hashed; a file whose hash has drifted is left alone (recorded in
// Modified) unless force is set.
func Update(skillsRoot string, bundle Bundle, ledger *hashledger.Ledger, force bool) (UpdateResult, error) {
	result := UpdateResult{SkillID: bundle.SkillID}

	for _, f := range bundle.Files {
		if _, guardErr := platform.GuardSkillPath(skillsRoot, bundle.SkillID, f.RelPath); guardErr != nil {
			return result, guardErr
		}
		target := filepath.Join(skillsRoot, bundle.SkillID, f.RelPath)
		key := hashledger.Key(bundle.SkillID, f.RelPath)

		currentHash, statErr := hashledger.HashFile(target)
		fileExists := statErr == nil
		ledgerHash, hadLedgerEntry := ledger.Get(key)

		userModified := fileExists && hadLedgerEntry && currentHash != ledgerHash
		if userModified && !force {
			result.Modified = append(result.Modified, f.RelPath)
			continue
		}

		if mkErr := os.MkdirAll(filepath.Dir(target), 0o755); mkErr != nil {
			return result, fmt.Errorf("create dir for %s: %w", target, mkErr)
		}
		if writeErr := platform.AtomicWrite(target, f.Data, 0o644, nil); writeErr != nil {
			return result, fmt.Errorf("write %s: %w", target, writeErr)
		}
		ledger.Set(key, hashledger.HashBytes(f.Data))
	}

	if len(result.Modified) > 0 {
		result.Skipped = true
	} else {
		result.Updated = true
	}
	return result, nil
}
