package provider

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coolbeans/gesetze/pkg/citation"
	"github.com/coolbeans/gesetze/pkg/library"
)

func mustAnalyze(t *testing.T, text string) *citation.Match {
	t.Helper()
	match, ok := citation.Analyze(text)
	if !ok {
		t.Fatalf("Analyze(%q) found no citation", text)
	}
	return match
}

func mustNew(t *testing.T, id string, opts ...Option) *LawProvider {
	t.Helper()
	provider, err := New(id, opts...)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", id, err)
	}
	return provider
}

func TestNewEmbedded(t *testing.T) {
	cases := []struct {
		id   string
		name string
	}{
		{IDGesetze, "gesetze-im-internet.de"},
		{IDDejure, "dejure.org"},
		{IDBuzer, "buzer.de"},
		{IDLexparency, "lexparency.de"},
	}

	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			provider := mustNew(t, tc.id)
			if provider.ID() != tc.id {
				t.Errorf("ID: got %q, want %q", provider.ID(), tc.id)
			}
			if provider.Name() != tc.name {
				t.Errorf("Name: got %q, want %q", provider.Name(), tc.name)
			}
			if provider.Library().Len() == 0 {
				t.Error("embedded library is empty")
			}
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	for _, id := range []string{"", "?!#@=", "g3s3tz3", "Gesetze"} {
		_, err := New(id)
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("New(%q): expected ErrUnknownProvider, got %v", id, err)
		}
	}
}

func TestNewLibraryFileErrors(t *testing.T) {
	_, err := New(IDDejure, WithLibraryFile(filepath.Join(t.TempDir(), "missing.json")))
	if !errors.Is(err, library.ErrLibraryLoad) {
		t.Errorf("expected ErrLibraryLoad, got %v", err)
	}
}

func TestNewWithLibraryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gesetze.yaml")
	index := "vvg:\n  law: VVG\n  title: Versicherungsvertragsgesetz\n  slug: vvg_2008\n  headings:\n    1: \"§ 1 Vertragstypische Pflichten\"\n"
	if err := os.WriteFile(path, []byte(index), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	provider := mustNew(t, IDGesetze, WithLibraryFile(path))
	url, err := provider.BuildURL(mustAnalyze(t, "§ 1 VVG"))
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}
	if url != "https://www.gesetze-im-internet.de/vvg_2008/__1.html" {
		t.Errorf("got %q", url)
	}
	if provider.ValidateText("§ 433 BGB") {
		t.Error("replaced library should not know BGB")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		provider string
		text     string
		expected bool
	}{
		{IDGesetze, "Art. 12 Abs. 1 GG", true},
		{IDGesetze, "Art. 12a GG", true},
		{IDGesetze, "§ 433 II BGB", true},
		{IDGesetze, "§ 1a BGB", false},
		{IDGesetze, "§ 1 GGGG", false},
		{IDGesetze, "Art. 2 Abs. 2 DSGVO", false},
		{IDGesetze, "§ 5 SGB V", true},
		{IDDejure, "Art. 2 Abs. 2 DSGVO", true},
		{IDDejure, "§ 433 BGB", true},
		{IDBuzer, "§ 433 BGB", true},
		{IDBuzer, "Art. 2 DSGVO", false},
		{IDLexparency, "Art. 2 Abs. 2 DSGVO", true},
		{IDLexparency, "§ 433 BGB", false},
	}

	for _, tc := range cases {
		t.Run(tc.provider+"/"+tc.text, func(t *testing.T) {
			provider := mustNew(t, tc.provider)
			if got := provider.ValidateText(tc.text); got != tc.expected {
				t.Errorf("ValidateText(%q): got %v, want %v", tc.text, got, tc.expected)
			}
		})
	}
}

func TestValidateEdgeCases(t *testing.T) {
	provider := mustNew(t, IDGesetze)

	if provider.Validate(nil) {
		t.Error("nil match should not validate")
	}
	if provider.ValidateText("") {
		t.Error("empty text should not validate")
	}
	if provider.ValidateText("no citation here") {
		t.Error("text without citation should not validate")
	}

	// Leading zeros fall back to the canonical integer key.
	if !provider.ValidateText("§ 0433 BGB") {
		t.Error("§ 0433 BGB should validate via canonical integer")
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		provider string
		text     string
		expected string
	}{
		{IDGesetze, "§ 433 II BGB", "https://www.gesetze-im-internet.de/bgb/__433.html"},
		{IDGesetze, "Art. 12 Abs. 1 GG", "https://www.gesetze-im-internet.de/gg/art_12.html"},
		{IDGesetze, "§ 5 SGB V", "https://www.gesetze-im-internet.de/sgb_5/__5.html"},
		{IDDejure, "Art. 2 Abs. 2 DSGVO", "https://dejure.org/gesetze/DSGVO/2.html"},
		{IDDejure, "Art. 12 GG", "https://dejure.org/gesetze/GG/12.html"},
		{IDBuzer, "§ 433 BGB", "https://buzer.de/433_BGB.htm"},
		{IDLexparency, "Art. 2 Abs. 2 DSGVO", "https://lexparency.de/eu/DSGVO/ART_2"},
	}

	for _, tc := range cases {
		t.Run(tc.provider+"/"+tc.text, func(t *testing.T) {
			provider := mustNew(t, tc.provider)
			got, err := provider.BuildURL(mustAnalyze(t, tc.text))
			if err != nil {
				t.Fatalf("BuildURL failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestBuildURLErrors(t *testing.T) {
	provider := mustNew(t, IDGesetze)

	cases := []struct {
		text     string
		expected error
	}{
		{"§ 1 GGGG", ErrUnknownLaw},
		{"§ 1a BGB", ErrUnknownNorm},
		{"Art. 2 DSGVO", ErrUnknownLaw},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			_, err := provider.BuildURL(mustAnalyze(t, tc.text))
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}

	if _, err := provider.BuildURL(nil); !errors.Is(err, ErrUnknownLaw) {
		t.Errorf("nil match: expected ErrUnknownLaw, got %v", err)
	}
}

func TestBuildTitle(t *testing.T) {
	cases := []struct {
		provider string
		text     string
		mode     TitleMode
		expected string
	}{
		{IDGesetze, "Art. 12 Abs. 1 GG", TitleNone, ""},
		{IDGesetze, "Art. 12 Abs. 1 GG", TitleLight, "GG"},
		{IDGesetze, "Art. 12 Abs. 1 GG", TitleNormal, "Grundgesetz für die Bundesrepublik Deutschland"},
		{IDGesetze, "Art. 12 Abs. 1 GG", TitleFull, "Art 12"},
		{IDGesetze, "§ 433 II BGB", TitleLight, "BGB"},
		{IDGesetze, "§ 433 II BGB", TitleNormal, "Bürgerliches Gesetzbuch"},
		{IDGesetze, "§ 433 II BGB", TitleFull, "§ 433 Vertragstypische Pflichten beim Kaufvertrag"},
		{IDDejure, "Art. 2 Abs. 2 DSGVO", TitleLight, "DSGVO"},
		{IDDejure, "Art. 2 Abs. 2 DSGVO", TitleFull, "Art.  2 Sachlicher Anwendungsbereich"},
		{IDBuzer, "§ 433 BGB", TitleFull, "§ 433 Vertragstypische Pflichten beim Kaufvertrag"},
	}

	for _, tc := range cases {
		t.Run(tc.provider+"/"+tc.mode.String()+"/"+tc.text, func(t *testing.T) {
			provider := mustNew(t, tc.provider)
			got, err := provider.BuildTitle(mustAnalyze(t, tc.text), tc.mode)
			if err != nil {
				t.Fatalf("BuildTitle failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestBuildTitleErrors(t *testing.T) {
	provider := mustNew(t, IDGesetze)
	match := mustAnalyze(t, "§ 1 GGGG")

	// No index lookup happens without a title.
	if title, err := provider.BuildTitle(match, TitleNone); err != nil || title != "" {
		t.Errorf("TitleNone: got %q, %v", title, err)
	}
	if _, err := provider.BuildTitle(match, TitleLight); !errors.Is(err, ErrUnknownLaw) {
		t.Errorf("expected ErrUnknownLaw, got %v", err)
	}
	if _, err := provider.BuildTitle(mustAnalyze(t, "§ 433 BGB"), TitleMode(42)); !errors.Is(err, ErrInvalidTitleMode) {
		t.Errorf("expected ErrInvalidTitleMode, got %v", err)
	}
}

func TestLoadOptions(t *testing.T) {
	opts, err := LoadOptions(IDDejure)
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}

	lib, err := library.LoadBytes([]byte(`{"hgb": {"law": "HGB", "slug": "HGB", "headings": {"1": "§ 1"}}}`), library.FormatJSON, "hgb", opts...)
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	provider := mustNew(t, IDDejure, WithLibrary(lib))
	url, err := provider.BuildURL(mustAnalyze(t, "§ 1 HGB"))
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}
	if url != "https://dejure.org/gesetze/HGB/1.html" {
		t.Errorf("got %q", url)
	}

	if _, err := LoadOptions("nope"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}
