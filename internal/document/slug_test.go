package document

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Política de Férias", "politica-de-ferias"},
		{"Benefícios: Vale Refeição", "beneficios-vale-refeicao"},
		{"  Espaços   extras  ", "espacos-extras"},
		{"FAQ 2024", "faq-2024"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.title); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugCollision(t *testing.T) {
	// Accented and plain spellings are one logical document.
	if Slug("Café com RH") != Slug("Cafe com RH") {
		t.Error("accented and plain titles should produce the same slug")
	}
}

func TestSlugDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Slug("Manual do Colaborador"); got != "manual-do-colaborador" {
			t.Fatalf("Slug not deterministic, got %q", got)
		}
	}
}
