package skills

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/basket/catalyst/skillbundles"
	"gopkg.in/yaml.v3"
)

// maxSkillMDSize bounds an embedded SKILL.md the same way the file-read
// cap bounds tracker content reads — defends against a future oversized
// bundle being embedded by accident, not an attack since the tree is
// compiled in.
const maxSkillMDSize = 1 << 20

// BundleFile is one file within an embedded bundle, relative to the bundle
// root (e.g. "SKILL.md" or "resources/api-design.md").
type BundleFile struct {
	RelPath string
	Data    []byte
}

// Bundle is one embedded skill's metadata plus every file it ships.
type Bundle struct {
	SkillID     string
	Name        string
	Description string
	Files       []BundleFile
}

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// EmbeddedCatalog is a read-only view over skillbundles.FS. It validates
// every bundle eagerly at construction so a malformed embedded bundle is a
// build-time-discoverable defect, not a runtime surprise during init.
type EmbeddedCatalog struct {
	bundles map[string]Bundle
}

// LoadEmbeddedCatalog walks skillbundles.FS and parses every SKILL.md
// frontmatter, validating non-empty name and presence.
func LoadEmbeddedCatalog() (*EmbeddedCatalog, error) {
	cat := &EmbeddedCatalog{bundles: map[string]Bundle{}}
	for _, id := range skillbundles.IDs {
		bundle, err := loadBundle(skillbundles.FS, id)
		if err != nil {
			return nil, fmt.Errorf("embedded bundle %q: %w", id, err)
		}
		cat.bundles[id] = bundle
	}
	return cat, nil
}

func loadBundle(fsys fs.FS, skillID string) (Bundle, error) {
	skillMDPath := path.Join(skillID, "SKILL.md")
	data, err := fs.ReadFile(fsys, skillMDPath)
	if err != nil {
		return Bundle{}, fmt.Errorf("read SKILL.md: %w", err)
	}
	if len(data) > maxSkillMDSize {
		return Bundle{}, fmt.Errorf("SKILL.md too large: %d bytes", len(data))
	}
	fm, err := parseFrontmatter(data)
	if err != nil {
		return Bundle{}, fmt.Errorf("parse SKILL.md frontmatter: %w", err)
	}
	if strings.TrimSpace(fm.Name) == "" {
		return Bundle{}, fmt.Errorf("SKILL.md missing name in frontmatter")
	}

	var files []BundleFile
	err = fs.WalkDir(fsys, skillID, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(p, skillID+"/")
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, BundleFile{RelPath: rel, Data: content})
		return nil
	})
	if err != nil {
		return Bundle{}, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })

	return Bundle{
		SkillID:     skillID,
		Name:        fm.Name,
		Description: fm.Description,
		Files:       files,
	}, nil
}

// parseFrontmatter extracts the "---\n...\n---" YAML header from a
// SKILL.md file. Unlike the rest of catalyst's JSON-only document model,
// SKILL.md frontmatter is YAML (gopkg.in/yaml.v3), matching
// markdown-with-frontmatter conventions in the wider ecosystem.
func parseFrontmatter(data []byte) (frontmatter, error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return frontmatter{}, fmt.Errorf("missing frontmatter delimiter")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return frontmatter{}, fmt.Errorf("unterminated frontmatter")
	}
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return frontmatter{}, err
	}
	return fm, nil
}

// IDs returns every embedded skill_id, sorted.
func (c *EmbeddedCatalog) IDs() []string {
	ids := make([]string, 0, len(c.bundles))
	for id := range c.bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the bundle for skillID and whether it was found.
func (c *EmbeddedCatalog) Lookup(skillID string) (Bundle, bool) {
	b, ok := c.bundles[skillID]
	return b, ok
}
