package namekey

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Version identifies the normalization rule set. It is recorded in every
// persisted scan dump: changing the rules silently changes which local
// folders match which catalog entries, so historical dumps must know which
// rules produced their keys. Bump on any rule change.
const Version = 1

var (
	// Trailing parenthesized or bracketed disambiguation, e.g. "(Remastered)",
	// "[Deluxe Edition]". Stripped repeatedly so stacked suffixes go too.
	bracketSuffix = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*$`)
	// Trailing disc markers: "CD1", "Disc 2", "disk-3".
	discMarker = regexp.MustCompile(`(?i)[\s_-]*(?:cd|disc|disk)[\s_-]*\d+\s*$`)
)

// Normalize turns a raw folder or tag string into a comparison key.
//
// The function is pure, deterministic, and total: unparseable or empty input
// yields the empty key, which never matches anything, so such entries surface
// as unresolvable instead of crashing a scan.
//
// Rules, applied in order (rule set Version above):
//  1. trim surrounding whitespace
//  2. Unicode-normalize (NFD), strip combining marks, recompose (NFC)
//  3. lowercase
//  4. drop a leading "the " and a trailing ", the"
//  5. strip trailing bracketed disambiguation suffixes, repeatedly
//  6. strip trailing disc markers (cd/disc/disk N), repeatedly
//  7. replace remaining punctuation with spaces and collapse whitespace
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = stripDiacritics(s)
	s = strings.ToLower(s)

	s = strings.TrimPrefix(s, "the ")
	s = strings.TrimSuffix(s, ", the")

	for {
		trimmed := bracketSuffix.ReplaceAllString(s, "")
		trimmed = discMarker.ReplaceAllString(trimmed, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		} else {
			space = true
		}
	}
	return b.String()
}

func stripDiacritics(s string) string {
	// The transformer carries state, so build a fresh chain per call;
	// Normalize must stay safe for concurrent use.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return out
}
