package countries

import (
	"sort"

	"geoquiz/internal/model"
)

// Normalize converts one raw provider record into a Country. Field presence
// and shape are not guaranteed, so every lookup is defensive; an unusable
// record yields nil rather than an error.
//
// Name precedence: English translation, then common name, then a plain
// string name. Capital may arrive as a list or a scalar. The flag prefers
// the vector reference over the raster one.
func Normalize(raw map[string]interface{}) *model.Country {
	if raw == nil {
		return nil
	}

	name := str(dig(raw, "translations", "eng", "common"))
	if name == "" {
		name = str(dig(raw, "name", "common"))
	}
	if name == "" {
		name = str(raw["name"])
	}

	capital := ""
	switch v := raw["capital"].(type) {
	case []interface{}:
		if len(v) > 0 {
			capital = str(v[0])
		}
	default:
		capital = str(v)
	}

	flagURL := str(dig(raw, "flags", "svg"))
	if flagURL == "" {
		flagURL = str(dig(raw, "flags", "png"))
	}

	currencies := []string{}
	if m, ok := raw["currencies"].(map[string]interface{}); ok {
		for _, code := range sortedKeys(m) {
			if desc, ok := m[code].(map[string]interface{}); ok {
				if n := str(desc["name"]); n != "" {
					currencies = append(currencies, n)
				}
			}
		}
	}

	languages := []string{}
	if m, ok := raw["languages"].(map[string]interface{}); ok {
		for _, code := range sortedKeys(m) {
			if n := str(m[code]); n != "" {
				languages = append(languages, n)
			}
		}
	}

	id := str(raw["cca2"])
	if id == "" {
		id = name
	}

	return &model.Country{
		ID:         id,
		Name:       name,
		Capital:    capital,
		Region:     str(raw["region"]),
		Subregion:  str(raw["subregion"]),
		FlagURL:    flagURL,
		Currencies: currencies,
		Languages:  languages,
	}
}

// DedupeAndClean drops nils, entries missing an ID or name, and repeated
// IDs. The first occurrence wins; order is otherwise preserved. Applying
// it twice yields the same result as once.
func DedupeAndClean(list []*model.Country) []model.Country {
	out := make([]model.Country, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		if c == nil || c.ID == "" || c.Name == "" {
			continue
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, *c)
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// dig walks nested maps by key, returning nil as soon as a level is
// missing or not a map.
func dig(m map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = m
	for _, k := range keys {
		next, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = next[k]
	}
	return cur
}

// Map iteration order is random; sort codes so currency and language
// lists come out deterministic.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
