package postservice

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// fallbackSlug is used when a title has no characters that survive slugification.
const fallbackSlug = "post"

var (
	slugStripRX    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRX = regexp.MustCompile(`[-\s]+`)
	SlugRX         = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// Slugify converts a title to a URL-safe slug. Accented letters are decomposed and
// reduced to ASCII, other non-ASCII characters are dropped, the result is lowercased,
// punctuation is removed, runs of whitespace and hyphens become a single hyphen and
// leading or trailing hyphens and underscores are trimmed.
//
//	Slugify("Hello World")     // "hello-world"
//	Slugify("Crème Brûlée!")   // "creme-brulee"
//	Slugify("  --Go_lang--  ") // "go_lang"
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(title) {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	s := strings.ToLower(b.String())
	s = slugStripRX.ReplaceAllString(s, "")
	s = slugCollapseRX.ReplaceAllString(s, "-")

	return strings.Trim(s, "-_")
}

func baseSlug(title string) string {
	if s := Slugify(title); s != "" {
		return s
	}
	return fallbackSlug
}

// UniqueSlug returns base if it is not taken, otherwise the first of base_1, base_2, ...
// that is not taken.
func UniqueSlug(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}

	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
