package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"devisflow/internal/domain"
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON schema of a normalized record as a generic map.
func Schema() map[string]any {
	text := func(fields ...string) map[string]any {
		props := make(map[string]any, len(fields))
		for _, f := range fields {
			props[f] = map[string]any{"type": "string"}
		}
		return props
	}
	object := func(props map[string]any) map[string]any {
		return map[string]any{"type": "object", "properties": props}
	}

	types := make([]any, 0, len(domain.ArticleTypes)+1)
	for _, t := range domain.ArticleTypes {
		types = append(types, string(t))
	}
	types = append(types, "")

	article := text(articleText...)
	article["type"] = map[string]any{"type": "string", "enum": types}
	article["titre_cote"] = map[string]any{"type": "string", "enum": []any{"", "MME", "Mme", "MR", "Mr"}}
	article["quantite"] = nullableNumber()
	article["autres_caracteristiques"] = map[string]any{"type": "object"}

	paiement := text(sectionText[SectionPaiement]...)
	for _, f := range paiementNumbers {
		paiement[f] = nullableNumber()
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			SectionSociete:  object(text(sectionText[SectionSociete]...)),
			SectionClient:   object(text(sectionText[SectionClient]...)),
			SectionCommande: object(text(sectionText[SectionCommande]...)),
			SectionDelivery: object(text(sectionText[SectionDelivery]...)),
			SectionArticles: map[string]any{"type": "array", "items": object(article)},
			SectionPaiement: object(paiement),
		},
		"required": []any{SectionSociete, SectionClient, SectionCommande, SectionDelivery, SectionArticles, SectionPaiement},
	}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []any{"number", "null"}}
}

func compile() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(Schema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("record.json")
	})
	return compiledSchema, schemaErr
}

// Validate checks rec against Schema and the delivery-mode exclusivity rule.
// It returns human-readable warnings; an empty result means rec conforms.
func Validate(rec map[string]any) []string {
	schema, err := compile()
	if err != nil {
		return []string{err.Error()}
	}

	var warnings []string
	if err := schema.Validate(rec); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			warnings = leafMessages(ve, warnings)
		} else {
			warnings = append(warnings, err.Error())
		}
	}

	if delivery, ok := rec[SectionDelivery].(map[string]any); ok {
		var set []string
		for _, k := range sectionText[SectionDelivery] {
			if s, _ := delivery[k].(string); strings.TrimSpace(s) != "" {
				set = append(set, k)
			}
		}
		if len(set) > 1 {
			warnings = append(warnings, fmt.Sprintf("/%s: several delivery modes set (%s)", SectionDelivery, strings.Join(set, ", ")))
		}
	}

	sort.Strings(warnings)
	return warnings
}

func leafMessages(ve *jsonschema.ValidationError, acc []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(acc, loc+": "+ve.Message)
	}
	for _, c := range ve.Causes {
		acc = leafMessages(c, acc)
	}
	return acc
}
