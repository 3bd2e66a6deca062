package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestTag(t *testing.T) {
	cases := map[string]language.Tag{
		"":                     language.English,
		"en":                   language.English,
		"hi":                   language.Hindi,
		"hi-IN":                language.Hindi,
		"mr":                   Marathi,
		"fr-FR,mr;q=0.8":       Marathi,
		"de":                   language.English,
		"not a language tag!!": language.English,
	}
	for in, want := range cases {
		if got := Tag(in); got != want {
			t.Errorf("Tag(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestEveryLanguageHasEveryKey(t *testing.T) {
	for _, tag := range supported {
		p := Printer(tag.String())
		for key := range translations[language.English] {
			if got := p.Sprintf(key, 1.0); got == key {
				t.Errorf("%s: key %q not found in catalog", tag, key)
			}
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title("en", "light rain"); got != "Light Rain" {
		t.Errorf("Title = %q, want %q", got, "Light Rain")
	}
}
