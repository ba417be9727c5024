package llm

import (
	"fmt"
	"strings"
)

const (
	abvPattern    = `^\d+(\.\d+)?\s?%$`
	volumePattern = `^\d+(\.\d+)?\s?(mL|cL|fl oz|gal)$`
)

// Alias is a named string type with a pattern, e.g. ABV.
type Alias struct {
	Name    string
	TS      string // TypeScript type expression
	Pattern string
}

// Field is one property of an Interface. Type is "string", "boolean", an alias name,
// an interface name, or any of those with a "[]" suffix.
type Field struct {
	Name     string
	Type     string
	Nullable bool
	Comment  string
}

type Interface struct {
	Name   string
	Fields []Field
}

// Schema describes the JSON a prompt asks for. It renders to a TypeScript block for
// the prompt and to a JSON Schema for validating the reply.
type Schema struct {
	Root       string
	Aliases    []Alias
	Interfaces []Interface
}

// BrandDataSchema is the shape of label facts returned by the vision model.
var BrandDataSchema = Schema{
	Root: "BrandData",
	Aliases: []Alias{
		{Name: "ABV", TS: "`${number}%`", Pattern: abvPattern},
		{Name: "Volume", TS: "`${number} mL` | `${number} cL` | `${number} fl oz` | `${number} gal`", Pattern: volumePattern},
	},
	Interfaces: []Interface{
		{Name: "OtherInfo", Fields: []Field{
			{Name: "bottler_info", Type: "string", Nullable: true, Comment: "Bottled by / distilled by statement with city and state."},
			{Name: "manufacturer", Type: "string", Nullable: true},
			{Name: "warnings", Type: "string", Nullable: true, Comment: "Full GOVERNMENT WARNING text exactly as printed."},
		}},
		{Name: "ProductInfo", Fields: []Field{
			{Name: "name", Type: "string", Nullable: true},
			{Name: "product_class_type", Type: "string", Nullable: true, Comment: "Class or type designation, e.g. Kentucky Straight Bourbon Whiskey, Vodka, IPA."},
			{Name: "alcohol_content_abv", Type: "ABV", Nullable: true},
			{Name: "net_contents", Type: "Volume", Nullable: true},
			{Name: "other_info", Type: "OtherInfo", Nullable: true},
		}},
		{Name: "BrandData", Fields: []Field{
			{Name: "brand_name", Type: "string", Nullable: true, Comment: "The brand the product is sold under, e.g. Old Tom Distillery."},
			{Name: "products", Type: "ProductInfo[]", Nullable: true},
		}},
	},
}

// AnalysisResultSchema is the shape of the compliance answers returned by the text model.
var AnalysisResultSchema = Schema{
	Root: "AnalysisResult",
	Interfaces: []Interface{
		{Name: "AnalysisResult", Fields: []Field{
			{Name: "brand_name_found", Type: "boolean"},
			{Name: "brand_name_found_results_reasoning", Type: "string", Nullable: true},
			{Name: "product_class_found", Type: "boolean"},
			{Name: "product_class_found_results_reasoning", Type: "string", Nullable: true},
			{Name: "alcohol_content_found", Type: "boolean"},
			{Name: "alcohol_content_found_results_reasoning", Type: "string", Nullable: true},
			{Name: "net_contents_found", Type: "boolean"},
			{Name: "net_contents_found_results_reasoning", Type: "string", Nullable: true},
			{Name: "health_warning_found", Type: "boolean", Nullable: true, Comment: "null when no warning was declared"},
			{Name: "health_warning_found_results_reasoning", Type: "string", Nullable: true},
		}},
	},
}

// TypeScript renders the schema as TypeScript declarations.
func (s Schema) TypeScript() string {
	var b strings.Builder
	for _, a := range s.Aliases {
		fmt.Fprintf(&b, "export type %s = %s;\n", a.Name, a.TS)
	}
	for _, it := range s.Interfaces {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "export interface %s {\n", it.Name)
		for _, f := range it.Fields {
			typ := f.Type
			if f.Nullable {
				typ += " | null"
			}
			fmt.Fprintf(&b, "  %s: %s;", f.Name, typ)
			if f.Comment != "" {
				b.WriteString(" // " + f.Comment)
			}
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// JSONSchema renders the schema as a JSON Schema map rooted at Root. Non-nullable
// fields are required.
func (s Schema) JSONSchema() map[string]any {
	defs := make(map[string]any, len(s.Interfaces))
	for _, it := range s.Interfaces {
		if it.Name == s.Root {
			continue
		}
		defs[it.Name] = s.objectSchema(it)
	}
	var root map[string]any
	for _, it := range s.Interfaces {
		if it.Name == s.Root {
			root = s.objectSchema(it)
		}
	}
	if root == nil {
		root = map[string]any{"type": "object"}
	}
	if len(defs) > 0 {
		root["$defs"] = defs
	}
	return root
}

func (s Schema) objectSchema(it Interface) map[string]any {
	props := make(map[string]any, len(it.Fields))
	required := make([]string, 0, len(it.Fields))
	for _, f := range it.Fields {
		props[f.Name] = s.fieldSchema(f.Type, f.Nullable)
		if !f.Nullable {
			required = append(required, f.Name)
		}
	}
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func (s Schema) fieldSchema(typ string, nullable bool) map[string]any {
	var inner map[string]any
	switch {
	case strings.HasSuffix(typ, "[]"):
		inner = map[string]any{"type": "array", "items": s.fieldSchema(strings.TrimSuffix(typ, "[]"), false)}
	case typ == "string" || typ == "boolean" || typ == "number":
		if nullable {
			return map[string]any{"type": []any{typ, "null"}}
		}
		return map[string]any{"type": typ}
	default:
		if a, ok := s.alias(typ); ok {
			inner = map[string]any{"type": "string", "pattern": a.Pattern}
		} else {
			inner = map[string]any{"$ref": "#/$defs/" + typ}
		}
	}
	if !nullable {
		return inner
	}
	return map[string]any{"anyOf": []any{inner, map[string]any{"type": "null"}}}
}

func (s Schema) alias(name string) (Alias, bool) {
	for _, a := range s.Aliases {
		if a.Name == name {
			return a, true
		}
	}
	return Alias{}, false
}
