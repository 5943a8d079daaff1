package normalizer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Férias", "ferias"},
		{"ATESTADO Médico", "atestado medico"},
		{"contratação", "contratacao"},
		{"café", "cafe"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Férias", "São Paulo", "já normalizado", "hello"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Política de Férias: 30 dias, ok?", 2)
	want := []string{"politica", "ferias", "dias"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeMinLength(t *testing.T) {
	// minLen is exclusive: a three-letter word survives minLen=2 but not
	// minLen=3.
	if got := Tokenize("rio mar", 2); len(got) != 2 {
		t.Errorf("minLen=2: got %v, want both words", got)
	}
	if got := Tokenize("rio mar", 3); len(got) != 0 {
		t.Errorf("minLen=3: got %v, want none", got)
	}
}

func TestTokenizeSplitsOnPunctuation(t *testing.T) {
	got := Tokenize("benefícios/vale-refeição", 2)
	want := []string{"beneficios", "vale", "refeicao"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}
