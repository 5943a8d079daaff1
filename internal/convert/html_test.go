package convert

import (
	"strings"
	"testing"
)

func TestHTMLBasicBlocks(t *testing.T) {
	src := `<html><head><title>ignorado</title><style>p{color:red}</style></head>
<body>
<h1>Manual</h1>
<p>Primeiro parágrafo com <strong>ênfase</strong>.</p>
<blockquote>Uma citação.</blockquote>
</body></html>`
	got, err := HTML([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	want := "<h1>Manual</h1>\n<p>Primeiro parágrafo com ênfase.</p>\n<blockquote>Uma citação.</blockquote>"
	if got != want {
		t.Errorf("markup:\n got %q\nwant %q", got, want)
	}
}

func TestHTMLKeepsAnchorsAndBreaks(t *testing.T) {
	got, err := HTML([]byte(`<p>Acesse o <a href="https://rh.example.com">portal</a><br>para detalhes</p>`))
	if err != nil {
		t.Fatal(err)
	}
	want := `<p>Acesse o <a href="https://rh.example.com">portal</a><br/>para detalhes</p>`
	if got != want {
		t.Errorf("markup:\n got %q\nwant %q", got, want)
	}
}

func TestHTMLLists(t *testing.T) {
	got, err := HTML([]byte(`<ul><li>Um</li><li><em>Dois</em></li><li>  </li></ul><ol><li>Primeiro</li></ol>`))
	if err != nil {
		t.Fatal(err)
	}
	want := "<ul><li>Um</li><li>Dois</li></ul>\n<ol><li>Primeiro</li></ol>"
	if got != want {
		t.Errorf("markup:\n got %q\nwant %q", got, want)
	}
}

func TestHTMLTable(t *testing.T) {
	got, err := HTML([]byte(`<table><thead><tr><th>Benefício</th><th>Valor</th></tr></thead><tbody><tr><td>VR</td><td>R$ 35,00</td></tr></tbody></table>`))
	if err != nil {
		t.Fatal(err)
	}
	want := "<table><tr><td>Benefício</td><td>Valor</td></tr><tr><td>VR</td><td>R$ 35,00</td></tr></table>"
	if got != want {
		t.Errorf("markup:\n got %q\nwant %q", got, want)
	}
}

func TestHTMLDiscardsBoilerplate(t *testing.T) {
	src := `<body><nav><p>menu</p></nav><header><h1>logo</h1></header>
<p>Conteúdo útil.</p>
<footer><p>rodapé</p></footer><script>alert(1)</script></body>`
	got, err := HTML([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if got != "<p>Conteúdo útil.</p>" {
		t.Errorf("boilerplate leaked: %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Error("script content leaked")
	}
}

func TestHTMLDropsEmptyBlocks(t *testing.T) {
	got, err := HTML([]byte(`<p>  </p><h2></h2><p>real</p>`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "<p>real</p>" {
		t.Errorf("markup = %q", got)
	}
}
