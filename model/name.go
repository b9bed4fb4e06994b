package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes a free-text person name into the merge key
// used by all Artist upserts. Two inputs that normalize identically are
// treated as the same entity, e.g. "AACHEN, Hans von" and "Hans von Aachen"
// both become "Hans Von Aachen".
//
// An empty result must never be used as a merge key; callers guard against it.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}

	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, `"`)
	name = strings.TrimSuffix(name, `"`)
	name = strings.Join(strings.Fields(name), " ")
	name = norm.NFKC.String(name)

	// "Last, First" catalogue order: the first comma is the split point,
	// everything after it is the given-name portion.
	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		first := strings.TrimSpace(name[idx+1:])
		name = strings.TrimSpace(first + " " + last)
	}

	name = strings.TrimRight(name, " ,-")
	name = strings.TrimSpace(name)

	return titleCaseWords(name)
}

// titleCaseWords title-cases every space-separated word, casing
// hyphen-joined sub-tokens independently ("van-gogh" -> "Van-Gogh").
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		parts := strings.Split(word, "-")
		for j, part := range parts {
			parts[j] = upperFirst(part)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}

// NameVariants returns the deterministic lookup variants tried against the
// external knowledge base, in order: the name itself, word-order reversed,
// "Last, First" catalogue form, and the name with a leading "The" stripped.
// Duplicates are removed while preserving order; the resolver stops at the
// first variant that yields a hit.
func NameVariants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	candidates := []string{name}

	fields := strings.Fields(name)
	if len(fields) > 1 {
		reversed := make([]string, len(fields))
		for i, f := range fields {
			reversed[len(fields)-1-i] = f
		}
		candidates = append(candidates, strings.Join(reversed, " "))
		candidates = append(candidates, fields[len(fields)-1]+", "+strings.Join(fields[:len(fields)-1], " "))
	}

	if len(name) > 4 && strings.EqualFold(name[:4], "the ") {
		candidates = append(candidates, strings.TrimSpace(name[4:]))
	}

	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		variants = append(variants, c)
	}
	return variants
}
