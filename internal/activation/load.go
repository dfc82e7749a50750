package activation

import (
	"fmt"
	"os"

	"github.com/basket/catalyst/internal/rules"
)

// LoadRulesDocument reads and parses the rules file at path. A missing
// file is reported as a distinguishable *os.PathError via errors.Is so
// callers can treat "missing" (emit nothing, exit 0) differently from
// "malformed" (log once to stderr, exit 0).
func LoadRulesDocument(path string) (*rules.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := rules.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load rules document %s: %w", path, err)
	}
	return doc, nil
}
