package keywords

import (
	"reflect"
	"strings"
	"testing"

	"github.com/intranet-tools/hr-knowledge-base/pkg/config"
)

func TestExtractFullStrategy(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "full"})
	got := e.Extract("férias remuneradas férias coletivas", "Política de Férias", nil)
	want := []string{"ferias", "remuneradas", "coletivas", "politica"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtractTopStrategy(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "top", TopN: 2})
	content := strings.Repeat("beneficios ", 5) + strings.Repeat("saude ", 3) + "odontologico"
	got := e.Extract(content, "", nil)
	want := []string{"beneficios", "saude"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtractTopStrategyTieBreak(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "top", TopN: 2})
	got := e.Extract("zebra abelha zebra abelha", "", nil)
	want := []string{"abelha", "zebra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("equal frequencies must sort alphabetically: got %v", got)
	}
}

func TestExtractMergesTitleAndTags(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "top", TopN: 1})
	got := e.Extract("conteudo conteudo extenso", "Manual Interno", []string{"onboarding"})
	for _, want := range []string{"manual", "interno", "onboarding"} {
		found := false
		for _, kw := range got {
			if kw == want {
				found = true
			}
		}
		if !found {
			t.Errorf("keyword %q missing from %v", want, got)
		}
	}
}

func TestExtractShortWordsDropped(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "full"})
	got := e.Extract("o rh da em sim", "RH", nil)
	if len(got) != 0 {
		t.Errorf("words of three letters or fewer must be dropped, got %v", got)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "full"})
	got := e.Extract("ferias ferias", "Férias", nil)
	if !reflect.DeepEqual(got, []string{"ferias"}) {
		t.Errorf("Extract = %v, want single ferias", got)
	}
}

func TestExtractDefaultsUnknownStrategy(t *testing.T) {
	e := New(config.KeywordsConfig{Strategy: "bogus"})
	got := e.Extract("palavras distintas suficientes", "", nil)
	if len(got) != 3 {
		t.Errorf("unknown strategy must fall back to full, got %v", got)
	}
}
