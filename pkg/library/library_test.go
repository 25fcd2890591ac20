package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
)

const flatIndex = `{
  "bgb": {
    "law": "BGB",
    "title": "Bürgerliches Gesetzbuch",
    "slug": "bgb",
    "headings": {
      "1": "§ 1 Beginn der Rechtsfähigkeit",
      "433": "§ 433 Vertragstypische Pflichten beim Kaufvertrag"
    }
  },
  "GG": {
    "law": "GG",
    "title": "Grundgesetz für die Bundesrepublik Deutschland",
    "slug": "gg",
    "headings": {
      "12": "Art 12",
      "12a": "Art 12a"
    }
  }
}`

const nestedIndex = `
bgb:
  law: BGB
  title: Bürgerliches Gesetzbuch
  slug: bgb
  headings:
    433:
      text: "§ 433 Vertragstypische Pflichten beim Kaufvertrag"
      slug: gesetz/bgb/433.htm
    90a:
      text: "§ 90a Tiere"
      slug: gesetz/bgb/90a.htm
`

func TestLoadBytesFlatJSON(t *testing.T) {
	lib, err := LoadBytes([]byte(flatIndex), FormatJSON, "flat.json")
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	if lib.Len() != 2 {
		t.Errorf("Len: got %d, want 2", lib.Len())
	}
	if got, want := lib.Abbreviations(), []string{"bgb", "gg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Abbreviations: got %v, want %v", got, want)
	}
	if lib.Source() != "flat.json" {
		t.Errorf("Source: got %q", lib.Source())
	}

	law, ok := lib.Lookup("BGB")
	if !ok {
		t.Fatal("Lookup(BGB) failed")
	}
	if law.ShortTitle != "BGB" || law.FullTitle != "Bürgerliches Gesetzbuch" || law.Slug != "bgb" {
		t.Errorf("unexpected law entry: %+v", law)
	}

	entry, ok := law.Norm("433")
	if !ok {
		t.Fatal("Norm(433) failed")
	}
	if entry.Heading != "§ 433 Vertragstypische Pflichten beim Kaufvertrag" {
		t.Errorf("Heading: got %q", entry.Heading)
	}

	// Uppercase keys in the index are normalized.
	if _, ok := lib.Lookup("gg"); !ok {
		t.Error("Lookup(gg) failed for uppercase index key")
	}
}

func TestLoadBytesNestedYAML(t *testing.T) {
	lib, err := LoadBytes([]byte(nestedIndex), FormatYAML, "nested.yaml")
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	law, ok := lib.Lookup("bgb")
	if !ok {
		t.Fatal("Lookup(bgb) failed")
	}

	cases := []struct {
		normID   string
		heading  string
		fragment string
	}{
		{"433", "§ 433 Vertragstypische Pflichten beim Kaufvertrag", "gesetz/bgb/433.htm"},
		{"90a", "§ 90a Tiere", "gesetz/bgb/90a.htm"},
	}
	for _, tc := range cases {
		t.Run(tc.normID, func(t *testing.T) {
			entry, ok := law.Norm(tc.normID)
			if !ok {
				t.Fatalf("Norm(%q) not found", tc.normID)
			}
			if entry.Heading != tc.heading {
				t.Errorf("Heading: got %q, want %q", entry.Heading, tc.heading)
			}
			if entry.URLFragment != tc.fragment {
				t.Errorf("URLFragment: got %q, want %q", entry.URLFragment, tc.fragment)
			}
		})
	}
}

func TestLoadBytesNormsAlias(t *testing.T) {
	index := `{"dsgvo": {"law": "DSGVO", "title": "Datenschutz-Grundverordnung", "slug": "DSGVO",
	  "norms": {"2": {"title": "Art. 2 Sachlicher Anwendungsbereich", "uri": "DSGVO/2.html"}}}}`

	lib, err := LoadBytes([]byte(index), FormatJSON, "alias.json")
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	law, _ := lib.Lookup("DSGVO")
	entry, ok := law.Norm("2")
	if !ok {
		t.Fatal("Norm(2) not found")
	}
	if entry.Heading != "Art. 2 Sachlicher Anwendungsbereich" || entry.URLFragment != "DSGVO/2.html" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestLoadWithFragmentFunc(t *testing.T) {
	fragment := func(law *LawEntry, normID string, raw RawNorm) string {
		return law.Slug + "/__" + normID + ".html"
	}

	lib, err := LoadBytes([]byte(flatIndex), FormatJSON, "flat.json", WithFragmentFunc(fragment))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	law, _ := lib.Lookup("bgb")
	entry, _ := law.Norm("1")
	if entry.URLFragment != "bgb/__1.html" {
		t.Errorf("URLFragment: got %q", entry.URLFragment)
	}
}

func TestLawEntryNormDualLookup(t *testing.T) {
	law := &LawEntry{
		Norms: map[string]NormEntry{
			"12":  {Heading: "Art 12"},
			"12a": {Heading: "Art 12a"},
		},
	}

	cases := []struct {
		normID   string
		expected bool
	}{
		{"12", true},
		{"012", true},
		{"12a", true},
		{"012a", false},
		{"13", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.normID, func(t *testing.T) {
			if got := law.HasNorm(tc.normID); got != tc.expected {
				t.Errorf("HasNorm(%q): got %v, want %v", tc.normID, got, tc.expected)
			}
		})
	}

	var nilLaw *LawEntry
	if nilLaw.HasNorm("12") {
		t.Error("nil law should have no norms")
	}
}

func TestLoadBytesPaddedNumericKeys(t *testing.T) {
	const paddedIndex = `
gg:
  law: GG
  slug: gg
  headings:
    "012": "Art 12"
    "0012": "Art 12 (alt)"
    "05": "Art 5"
    "5": "Art 5 (original)"
`
	fragment := func(law *LawEntry, normID string, raw RawNorm) string {
		return "art_" + normID + ".html"
	}

	lib, err := LoadBytes([]byte(paddedIndex), FormatYAML, "padded.yaml", WithFragmentFunc(fragment))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	law, _ := lib.Lookup("gg")

	cases := []struct {
		normID   string
		heading  string
		fragment string
	}{
		{"12", "Art 12 (alt)", "art_12.html"},
		{"012", "Art 12", "art_012.html"},
		{"5", "Art 5 (original)", "art_5.html"},
		{"05", "Art 5", "art_05.html"},
	}
	for _, tc := range cases {
		t.Run(tc.normID, func(t *testing.T) {
			entry, ok := law.Norm(tc.normID)
			if !ok {
				t.Fatalf("Norm(%q) not found", tc.normID)
			}
			if entry.Heading != tc.heading {
				t.Errorf("Heading: got %q, want %q", entry.Heading, tc.heading)
			}
			if entry.URLFragment != tc.fragment {
				t.Errorf("URLFragment: got %q, want %q", entry.URLFragment, tc.fragment)
			}
		})
	}
}

func TestLoadFromDiskAndFS(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "index.yml")
	if err := os.WriteFile(path, []byte(nestedIndex), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	lib, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if lib.Len() != 1 {
		t.Errorf("Len: got %d, want 1", lib.Len())
	}

	fsys := fstest.MapFS{"data/index.json": {Data: []byte(flatIndex)}}
	lib, err = LoadFS(fsys, "data/index.json")
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if lib.Len() != 2 {
		t.Errorf("Len: got %d, want 2", lib.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	tempDir := t.TempDir()
	malformedPath := filepath.Join(tempDir, "malformed.json")
	if err := os.WriteFile(malformedPath, []byte(`{"bgb": [`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cases := []struct {
		name string
		load func() (*Library, error)
	}{
		{"missing_file", func() (*Library, error) { return Load(filepath.Join(tempDir, "missing.json")) }},
		{"malformed_file", func() (*Library, error) { return Load(malformedPath) }},
		{"empty_index", func() (*Library, error) { return LoadBytes([]byte(`{}`), FormatJSON, "empty") }},
		{"bad_norm_shape", func() (*Library, error) {
			return LoadBytes([]byte(`{"bgb": {"headings": {"1": [1, 2]}}}`), FormatJSON, "bad")
		}},
		{"unsupported_format", func() (*Library, error) { return LoadBytes([]byte(flatIndex), Format("xml"), "x") }},
		{"missing_fs_file", func() (*Library, error) { return LoadFS(fstest.MapFS{}, "nope.json") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lib, err := tc.load()
			if err == nil {
				t.Fatalf("expected error, got library with %d laws", lib.Len())
			}
			if !errors.Is(err, ErrLibraryLoad) {
				t.Errorf("expected ErrLibraryLoad, got %v", err)
			}
		})
	}
}

func TestShortTitleDefault(t *testing.T) {
	lib, err := LoadBytes([]byte(`{"vwgo": {"title": "Verwaltungsgerichtsordnung", "headings": {"40": "§ 40"}}}`), FormatJSON, "x")
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	law, _ := lib.Lookup("VwGO")
	if law.ShortTitle != "VWGO" {
		t.Errorf("ShortTitle: got %q, want %q", law.ShortTitle, "VWGO")
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":      FormatJSON,
		"a.yaml":      FormatYAML,
		"a.YML":       FormatYAML,
		"no-extension": FormatJSON,
	}
	for path, expected := range cases {
		if got := FormatFromPath(path); got != expected {
			t.Errorf("FormatFromPath(%q): got %q, want %q", path, got, expected)
		}
	}
}

func TestNilLibrary(t *testing.T) {
	var lib *Library
	if _, ok := lib.Lookup("bgb"); ok {
		t.Error("nil library lookup should fail")
	}
	if lib.Len() != 0 || len(lib.Abbreviations()) != 0 || lib.Source() != "" {
		t.Error("nil library should be empty")
	}
}
