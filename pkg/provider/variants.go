package provider

import (
	"embed"
	"strings"

	"github.com/coolbeans/gesetze/pkg/library"
)

// Provider identifiers.
const (
	IDGesetze    = "gesetze"
	IDDejure     = "dejure"
	IDBuzer      = "buzer"
	IDLexparency = "lexparency"
)

//go:embed data/*.json
var embeddedData embed.FS

type variant struct {
	id       string
	name     string
	fragment library.FragmentFunc
	url      func(law *library.LawEntry, entry library.NormEntry) string
}

func (v variant) dataFile() string {
	return "data/" + v.id + ".json"
}

func (v variant) loadOptions() []library.LoadOption {
	return []library.LoadOption{library.WithFragmentFunc(v.fragment)}
}

var variants = map[string]variant{
	IDGesetze: {
		id:   IDGesetze,
		name: "gesetze-im-internet.de",
		// The Grundgesetz is the only law whose pages are named by article.
		fragment: func(law *library.LawEntry, normID string, _ library.RawNorm) string {
			if law.Abbreviation == "gg" {
				return "art_" + normID + ".html"
			}
			return "__" + normID + ".html"
		},
		url: func(law *library.LawEntry, entry library.NormEntry) string {
			return "https://www.gesetze-im-internet.de/" + law.Slug + "/" + entry.URLFragment
		},
	},
	IDDejure: {
		id:   IDDejure,
		name: "dejure.org",
		fragment: func(_ *library.LawEntry, normID string, _ library.RawNorm) string {
			return normID + ".html"
		},
		url: func(law *library.LawEntry, entry library.NormEntry) string {
			return "https://dejure.org/gesetze/" + law.Slug + "/" + entry.URLFragment
		},
	},
	IDBuzer: {
		id:   IDBuzer,
		name: "buzer.de",
		fragment: func(_ *library.LawEntry, _ string, raw library.RawNorm) string {
			return strings.TrimPrefix(raw.Slug, "/")
		},
		url: func(_ *library.LawEntry, entry library.NormEntry) string {
			return "https://buzer.de/" + entry.URLFragment
		},
	},
	IDLexparency: {
		id:   IDLexparency,
		name: "lexparency.de",
		fragment: func(_ *library.LawEntry, normID string, _ library.RawNorm) string {
			return "ART_" + normID
		},
		url: func(law *library.LawEntry, entry library.NormEntry) string {
			return "https://lexparency.de/eu/" + law.Slug + "/" + entry.URLFragment
		},
	},
}
