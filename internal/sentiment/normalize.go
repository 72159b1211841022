package sentiment

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	linkPattern        = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern         = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern       = regexp.MustCompile(`\S*@\S*\s?`)
	hashtagPattern     = regexp.MustCompile(`#\S+`)
	specialCharPattern = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;:()\-]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)

	yoReplacer = strings.NewReplacer("ё", "е")
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// Normalize prepares text for lexicon matching. Lexicon terms go through
// the same function, so matching is always done in normalized space.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = RemoveLinks(text)
	text = emailPattern.ReplaceAllString(text, "")
	text = hashtagPattern.ReplaceAllString(text, "")
	text = specialCharPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	// cases.Caser keeps state, one per call
	text = cases.Lower(language.Russian).String(text)
	return yoReplacer.Replace(text)
}
