package record

import (
	"strconv"
	"strings"

	"devisflow/internal/domain"
)

var sectionText = map[string][]string{
	SectionSociete:  {"nom", "capital", "adresse", "telephone", "email", "siret", "APE", "CEE", "banque", "IBAN"},
	SectionClient:   {"nom", "adresse", "code_client"},
	SectionCommande: {"numero", "date", "date_validite", "commercial", "origine"},
	SectionDelivery: {"emporte_client_C57", "fourgon_C58", "transporteur_C59"},
	SectionPaiement: {"conditions"},
}

var paiementNumbers = []string{"port_ht", "base_ht", "taux_tva", "total_ttc", "acompte", "net_a_payer"}

var articleText = []string{
	"type", "description", "titre_cote", "information", "dimensions",
	"noyau", "fermete", "housse", "matiere_housse",
}

// Normalize returns a copy of rec where every known textual field is a
// string ("" when absent) and every known numeric field is a number or nil.
// Missing sections are created. Article titre_cote is derived from the
// description when the model left it empty. Unknown keys are kept as is.
func Normalize(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec)+6)
	for k, v := range rec {
		out[k] = v
	}

	for section, fields := range sectionText {
		sec := copySection(out[section])
		for _, f := range fields {
			sec[f] = toText(sec[f])
		}
		if section == SectionPaiement {
			for _, f := range paiementNumbers {
				sec[f] = toNumber(sec[f])
			}
		}
		out[section] = sec
	}

	items := Articles(out)
	articles := make([]any, 0, len(items))
	for _, item := range items {
		if a, ok := item.(map[string]any); ok {
			articles = append(articles, normalizeArticle(a))
		}
	}
	out[SectionArticles] = articles

	return out
}

func normalizeArticle(a map[string]any) map[string]any {
	out := copySection(a)
	for _, f := range articleText {
		out[f] = toText(out[f])
	}
	out["type"] = normalizeType(out["type"].(string))
	out["quantite"] = toNumber(out["quantite"])
	if out["titre_cote"] == "" {
		out["titre_cote"] = TitreCote(out["description"].(string))
	}
	if _, ok := out["autres_caracteristiques"].(map[string]any); !ok {
		out["autres_caracteristiques"] = map[string]any{}
	}
	return out
}

func normalizeType(t string) string {
	lower := strings.ToLower(strings.TrimSpace(t))
	for _, known := range domain.ArticleTypes {
		if lower == string(known) {
			return lower
		}
	}
	return t
}

func copySection(v any) map[string]any {
	src, _ := v.(map[string]any)
	out := make(map[string]any, len(src))
	for k, val := range src {
		out[k] = val
	}
	return out
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// toNumber accepts JSON numbers and numeric strings in French notation
// ("1 774,21 €", "20 %"). Anything else becomes nil.
func toNumber(v any) any {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "", "%", "").Replace(t)
		s = strings.ReplaceAll(s, ",", ".")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return f
	default:
		return nil
	}
}
