package skills

import "testing"

func TestLoadEmbeddedCatalogParsesAllBundles(t *testing.T) {
	cat, err := LoadEmbeddedCatalog()
	if err != nil {
		t.Fatalf("LoadEmbeddedCatalog: %v", err)
	}
	ids := cat.IDs()
	if len(ids) == 0 {
		t.Fatal("expected at least one embedded bundle")
	}
	for _, id := range ids {
		bundle, ok := cat.Lookup(id)
		if !ok {
			t.Fatalf("Lookup(%q) = not found after IDs() listed it", id)
		}
		if bundle.Name == "" {
			t.Fatalf("bundle %q has empty Name", id)
		}
		foundSkillMD := false
		for _, f := range bundle.Files {
			if f.RelPath == "SKILL.md" {
				foundSkillMD = true
			}
		}
		if !foundSkillMD {
			t.Fatalf("bundle %q missing SKILL.md in Files", id)
		}
	}
}

func TestLookupMissingSkillID(t *testing.T) {
	cat, err := LoadEmbeddedCatalog()
	if err != nil {
		t.Fatalf("LoadEmbeddedCatalog: %v", err)
	}
	if _, ok := cat.Lookup("does-not-exist"); ok {
		t.Fatal("expected Lookup to report not-found for unknown skill_id")
	}
}
