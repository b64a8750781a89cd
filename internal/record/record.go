// Package record holds helpers for the structured quote record returned by
// the LLM: a JSON object with the sections societe, client, commande,
// mode_mise_a_disposition, articles and paiement.
package record

import (
	"regexp"
	"strings"
)

// Top-level section keys.
const (
	SectionSociete  = "societe"
	SectionClient   = "client"
	SectionCommande = "commande"
	SectionDelivery = "mode_mise_a_disposition"
	SectionArticles = "articles"
	SectionPaiement = "paiement"
)

var titreCoteRe = regexp.MustCompile(`-\s*(MME|Mme|MR|Mr)\s*$`)

// TitreCote returns the side marker at the end of an article description
// ("... - MME" yields "MME"), or "" when there is none.
func TitreCote(description string) string {
	m := titreCoteRe.FindStringSubmatch(strings.TrimSpace(description))
	if m == nil {
		return ""
	}
	return m[1]
}

// Merge returns a new record holding base overlaid by overlay. The merge is
// shallow: for every top-level key present in overlay, overlay wins.
func Merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Client returns the client section, or an empty object.
func Client(rec map[string]any) map[string]any {
	if c, ok := rec[SectionClient].(map[string]any); ok {
		return c
	}
	return map[string]any{}
}

// Articles returns the line items, or an empty slice.
func Articles(rec map[string]any) []any {
	if a, ok := rec[SectionArticles].([]any); ok {
		return a
	}
	return []any{}
}
