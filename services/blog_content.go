package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const wordsPerMinute = 200

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed. Script and style contents are dropped.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()

	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				parts = append(parts, child.Text())
				return
			}
			walk(child)
		})
	}
	walk(doc.Selection)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// ReadTime estimates minutes to read an HTML body at 200 words per minute,
// never less than one.
func ReadTime(html string) int {
	words := len(strings.Fields(PlainText(html)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return max(1, minutes)
}

// Excerpt cuts plain text to at most limit runes on a word boundary.
func Excerpt(text string, limit int) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	cut := string(r[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// Slugify lowercases title, strips accents and joins the remaining
// alphanumeric runs with dashes.
func Slugify(title string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripAccents, strings.ToLower(title))
	if err != nil {
		plain = strings.ToLower(title)
	}
	return strings.Trim(nonSlugChars.ReplaceAllString(plain, "-"), "-")
}

// ValidSlug reports whether slug is lowercase words joined by single dashes.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
