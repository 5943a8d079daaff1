package benchmark

import (
	"strings"
	"testing"

	"github.com/intranet-tools/hr-knowledge-base/internal/parser"
)

var sampleMarkup = "<h1>Manual do Colaborador</h1>" +
	"<p>Atenção: leia este documento antes do primeiro dia.</p>" +
	strings.Repeat("<p>Parágrafo com <a href=\"https://rh.example.com\">link</a> e texto corrido para simular um documento real.</p>", 30) +
	"<ul><li>Plano de saúde</li><li>Vale refeição</li><li>Auxílio creche</li></ul>" +
	"<table><tr><td>Benefício</td><td>Valor</td></tr><tr><td>VR</td><td>R$ 35,00</td></tr></table>"

func BenchmarkParse(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(sampleMarkup)))
	for i := 0; i < b.N; i++ {
		sections := parser.Parse(sampleMarkup)
		_ = sections
	}
}

func BenchmarkStripMarkup(b *testing.B) {
	block := `Texto com <strong>negrito</strong>, <em>itálico</em>, um <a href="https://x.example">link</a><br/>e entidades &amp; &nbsp; misturadas.`
	b.ReportAllocs()
	b.SetBytes(int64(len(block)))
	for i := 0; i < b.N; i++ {
		_ = parser.StripMarkup(block)
	}
}

func BenchmarkClassifySection(b *testing.B) {
	texts := []string{
		"Atenção: o prazo termina sexta-feira.",
		"Fale com rh@example.com para dúvidas.",
		"Passo 1: preencha o formulário",
		"Texto comum sem marcador nenhum.",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, text := range texts {
			_ = parser.ClassifySection(text)
		}
	}
}
