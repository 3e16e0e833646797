package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  El Misterio (Parte 1) ", "El_Misterio_Parte_1"},
		{"Canción del mar", "Cancion_del_mar"},
		{"a/b:c", "a-b-c"},
		{"   ", "segment"},
		{"()", "segment"},
		{"O'Brien's \"story\"?", "OBriens_story"},
		{"multiple   spaces\tand tabs", "multiple_spaces_and_tabs"},
	}
	for _, tc := range tests {
		if got := CleanName(tc.in); got != tc.want {
			t.Errorf("CleanName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"El Triángulo de las Bermudas", "el-triangulo-de-las-bermudas"},
		{"  ¿Qué pasó en Roswell?  ", "que-paso-en-roswell"},
		{"", "topic"},
		{"Тайна перевала Дятлова", "таина-перевала-дятлова"},
		{"日本の幽霊屋敷", "日本の幽霊屋敷"},
	}
	for _, tc := range tests {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugTruncatesLongTopics(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "palabra "
	}
	got := Slug(long)
	if len(got) > 80 {
		t.Fatalf("slug too long: %d", len(got))
	}
	if got[len(got)-1] == '-' {
		t.Fatalf("slug ends with separator: %q", got)
	}
	if other := Slug(long + "final"); other == got {
		t.Fatalf("truncated slugs of distinct topics collide: %q", got)
	}
}

func TestSlugWithoutLettersIsDistinct(t *testing.T) {
	a, b := Slug("!!!"), Slug("???")
	if !strings.HasPrefix(a, "topic-") || !strings.HasPrefix(b, "topic-") {
		t.Fatalf("unexpected slugs %q %q", a, b)
	}
	if a == b {
		t.Fatalf("distinct topics share slug %q", a)
	}
	if Slug("!!!") != a {
		t.Fatal("slug is not stable")
	}
}

func TestSlugTruncatesOnRuneBoundary(t *testing.T) {
	got := Slug(strings.Repeat("幽霊", 40))
	if len(got) > 80 {
		t.Fatalf("slug too long: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("slug is not valid UTF-8: %q", got)
	}
}
