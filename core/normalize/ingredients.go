package normalize

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/recipepipe/core"
)

var quantityPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?|\d+/\d+|\d*[½⅓⅔¼¾⅛])$`)

var (
	spoonWords  = set("cuillere", "cuilleres", "cuillère", "cuillères")
	spoonLinks  = set("a", "à")
	spoonKinds  = set("cafe", "café", "soupe")
	singleUnits = set("g", "kg", "mg", "ml", "cl", "l", "oz", "lb", "tsp", "tbsp", "c", "cs", "càs", "cac", "càc")
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Ingredients normalizes the raw ingredient list. Strings are tokenized,
// objects are whitespace-normalized field by field, and anything else
// becomes an empty ingredient. A non-array value yields an empty list.
func Ingredients(v any) []core.Ingredient {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return []core.Ingredient{}
	}

	out := make([]core.Ingredient, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case string:
			out = append(out, ParseIngredient(it))
		case map[string]any:
			out = append(out, fromFields(it["quantity"], it["unit"], it["name"]))
		case map[any]any:
			// YAML decoders produce untyped keys for nested mappings.
			out = append(out, fromFields(it["quantity"], it["unit"], it["name"]))
		default:
			out = append(out, core.Ingredient{})
		}
	}
	return out
}

func fromFields(quantity, unit, name any) core.Ingredient {
	return core.Ingredient{Quantity: Text(quantity), Unit: Text(unit), Name: Text(name)}
}

// ParseIngredient splits a free-text ingredient line into quantity, unit and
// name, e.g. "200 g farine" or "2 cuillères à soupe sucre".
func ParseIngredient(raw string) core.Ingredient {
	text := collapse(raw)
	if text == "" {
		return core.Ingredient{}
	}

	tokens := strings.Split(text, " ")
	var ing core.Ingredient

	if quantityPattern.MatchString(tokens[0]) {
		ing.Quantity = tokens[0]
		tokens = tokens[1:]
	}

	switch {
	case len(tokens) >= 3 &&
		spoonWords[strings.ToLower(tokens[0])] &&
		spoonLinks[strings.ToLower(tokens[1])] &&
		spoonKinds[strings.ToLower(tokens[2])]:
		ing.Unit = strings.Join(tokens[:3], " ")
		tokens = tokens[3:]
	case len(tokens) > 0 && singleUnits[strings.ToLower(tokens[0])]:
		ing.Unit = tokens[0]
		tokens = tokens[1:]
	}

	ing.Name = collapse(strings.Join(tokens, " "))
	return ing
}
