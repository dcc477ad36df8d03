package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Our Wedding", "our-wedding"},
		{"finnish umlauts", "Meidän häät", "meidan-haat"},
		{"multiple spaces", "Anna  ja  Mikko", "anna-ja-mikko"},
		{"special characters", "Häät 2026!!!", "haat-2026"},
		{"leading and trailing", " --Juhlat-- ", "juhlat"},
		{"scandinavian", "Bröllop på Åland", "brollop-pa-aland"},
		{"cyrillic transliterated", "Свадьба", "svadba"},
		{"empty", "", ""},
		{"only punctuation", "!?&", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"meidan-haat", true},
		{"haat2026", true},
		{"a", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Isot-Kirjaimet", false},
		{"ääkköset", false},
		{"spa ce", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

func TestSlugifyProducesValidSlug(t *testing.T) {
	inputs := []string{"Meidän häät", "Anna & Mikko 14.6.2026", "JUHLA"}
	for _, in := range inputs {
		slug := Slugify(in)
		if slug != "" && !IsValidSlug(slug) {
			t.Errorf("Slugify(%q) = %q, not a valid slug", in, slug)
		}
	}
}
