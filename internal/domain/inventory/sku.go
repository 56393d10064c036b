package inventory

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// NormalizeSkuCode normaliza un código de SKU: sin acentos, mayúsculas y espacios simples.
func NormalizeSkuCode(code string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, code)
	if err != nil {
		out = code
	}
	return upper.String(strings.Join(strings.Fields(out), " "))
}

// PrefixRule asocia un prefijo de SKU sucio con su SKU limpio sin calibrar.
type PrefixRule struct {
	Prefix   string
	CleanSku string
}

// CleanSkuTable resuelve el SKU limpio (SINCAL) a partir del SKU sucio.
// Orden: tabla explícita, luego el prefijo más largo y por último Fallback.
type CleanSkuTable struct {
	explicit map[string]string
	prefixes []PrefixRule
	fallback string
}

// NewCleanSkuTable construye la tabla; claves y prefijos se normalizan.
func NewCleanSkuTable(explicit map[string]string, prefixes []PrefixRule, fallback string) *CleanSkuTable {
	t := &CleanSkuTable{explicit: make(map[string]string, len(explicit)), fallback: NormalizeSkuCode(fallback)}
	for dirty, clean := range explicit {
		t.explicit[NormalizeSkuCode(dirty)] = NormalizeSkuCode(clean)
	}
	for _, p := range prefixes {
		if p.Prefix == "" || p.CleanSku == "" {
			continue
		}
		t.prefixes = append(t.prefixes, PrefixRule{Prefix: NormalizeSkuCode(p.Prefix), CleanSku: NormalizeSkuCode(p.CleanSku)})
	}
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].Prefix) > len(t.prefixes[j].Prefix)
	})
	return t
}

// DefaultCleanSkuTable reglas BLA/COL con BLA SINCAL como respaldo.
func DefaultCleanSkuTable() *CleanSkuTable {
	return NewCleanSkuTable(nil, []PrefixRule{
		{Prefix: "BLA", CleanSku: "BLA SINCAL"},
		{Prefix: "COL", CleanSku: "COL SINCAL"},
	}, "BLA SINCAL")
}

// Resolve devuelve el SKU limpio para dirtySku.
func (t *CleanSkuTable) Resolve(dirtySku string) string {
	code := NormalizeSkuCode(dirtySku)
	if clean, ok := t.explicit[code]; ok {
		return clean
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(code, p.Prefix) {
			return p.CleanSku
		}
	}
	return t.fallback
}
