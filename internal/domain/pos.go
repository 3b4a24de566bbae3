package domain

import "strings"

var posFullNames = map[string]string{
	"noun":         "n",
	"verb":         "v",
	"adjective":    "adj",
	"adverb":       "adv",
	"preposition":  "prep",
	"pronoun":      "pron",
	"conjunction":  "conj",
	"interjection": "interj",
}

var posShortTags = map[string]bool{
	"n": true, "v": true, "adj": true, "adv": true,
	"prep": true, "pron": true, "conj": true, "interj": true,
}

// NormalizePOS maps a part-of-speech name or tag to its canonical short form
// with a trailing period ("noun" -> "n.", "ADJ" -> "adj.").
// Unrecognized input is returned unchanged; empty input returns "".
func NormalizePOS(pos string) string {
	p := strings.Trim(strings.ToLower(strings.TrimSpace(pos)), ".")
	if short, ok := posFullNames[p]; ok {
		p = short
	}
	if posShortTags[p] {
		return p + "."
	}
	return pos
}

// IsCanonicalPOS reports whether pos is already a recognized short form ("n.", "adj.")
func IsCanonicalPOS(pos string) bool {
	if !strings.HasSuffix(pos, ".") {
		return false
	}
	return posShortTags[strings.TrimSuffix(pos, ".")]
}
