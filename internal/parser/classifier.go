package parser

import (
	"regexp"

	"github.com/intranet-tools/hr-knowledge-base/internal/document"
)

// SectionRule pairs a predicate with the section type it selects. Rules are
// evaluated top to bottom, first match wins; the order is part of the
// observable behaviour and must not be rearranged.
type SectionRule struct {
	Name    string
	Pattern *regexp.Regexp
	Type    document.SectionType
}

// SectionRules classifies a paragraph-level block. Lead-word matching is a
// prefix test (no trailing boundary): "Dicas" and "Notas" classify the same
// as their singular forms. Word lists carry both the Portuguese originals
// and their English equivalents.
var SectionRules = []SectionRule{
	{
		Name:    "highlight-lead-word",
		Pattern: regexp.MustCompile(`(?i)^(atenção|atencao|attention|importante|important|nota|note|dica|tip|observação|observacao|observation|cuidado|caution)`),
		Type:    document.SectionHighlight,
	},
	{
		Name:    "contact-marker",
		Pattern: regexp.MustCompile(`(?i)@|\b(tel|telefone|phone|ramal|extension|email|e-mail|contato|contact):`),
		Type:    document.SectionContact,
	},
	{
		Name:    "quotation-lead",
		Pattern: regexp.MustCompile(`^[“”]|^—`),
		Type:    document.SectionBlockquote,
	},
	{
		Name:    "divider-run",
		Pattern: regexp.MustCompile(`^[-_*]{3,}$`),
		Type:    document.SectionDivider,
	},
	{
		Name:    "timeline-marker",
		Pattern: regexp.MustCompile(`(?i)^\d{1,2}[./]\d{1,2}[./]\d{2,4}|^(passo|etapa|fase|step|phase|stage)\s+\d+`),
		Type:    document.SectionTimeline,
	},
}

// ClassifySection returns the section type for a paragraph block's plain
// text, defaulting to paragraph.
func ClassifySection(text string) document.SectionType {
	for _, rule := range SectionRules {
		if rule.Pattern.MatchString(text) {
			return rule.Type
		}
	}
	return document.SectionParagraph
}

// VariantRule pairs a whole-word keyword family with a highlight variant.
type VariantRule struct {
	Variant document.Variant
	Pattern *regexp.Regexp
}

// VariantRules assigns the semantic variant of a highlight block. Priority
// order: warning beats important beats deadline, and so on. A keyword
// appearing mid-sentence still triggers its family; that fuzziness is an
// accepted trade-off of the heuristic.
var VariantRules = []VariantRule{
	{document.VariantWarning, regexp.MustCompile(`(?i)\b(atenção|atencao|cuidado|alerta|attention|caution|warning)\b`)},
	{document.VariantImportant, regexp.MustCompile(`(?i)\b(importante|obrigatório|obrigatorio|necessário|necessario|essencial|important|mandatory|required|essential)\b`)},
	{document.VariantDeadline, regexp.MustCompile(`(?i)\b(prazo|data limite|vencimento|encerramento|deadline|due date|closing date)\b`)},
	{document.VariantSuccess, regexp.MustCompile(`(?i)\b(sucesso|aprovado|concluído|concluido|deferido|success|approved|completed|granted)\b`)},
	{document.VariantError, regexp.MustCompile(`(?i)\b(erro|negado|indeferido|rejeitado|falha|error|denied|rejected|failed)\b`)},
	{document.VariantTip, regexp.MustCompile(`(?i)\b(dica|sugestão|sugestao|recomenda|tip|suggest|recommend)\b`)},
	{document.VariantNote, regexp.MustCompile(`(?i)\b(nota|observação|observacao|note)\b`)},
}

// ClassifyVariant returns the variant for a highlight block's plain text,
// defaulting to info.
func ClassifyVariant(text string) document.Variant {
	for _, rule := range VariantRules {
		if rule.Pattern.MatchString(text) {
			return rule.Variant
		}
	}
	return document.VariantInfo
}
