// Package names holds the pure string transforms used to compare and
// canonicalize scraped team labels. Display strings keep their original
// diacritics; folding is for comparison only.
package names

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxPrefixWords = 5

var (
	birthYearRegex    = regexp.MustCompile(`^(19|20)\d{2}[BG]?$`)
	ageGroupRegex     = regexp.MustCompile(`^[Uu]\d{1,2}$|^\d{1,2}[BG]$`)
	abbreviationRegex = regexp.MustCompile(`^[A-Z]{2,4}$`)
)

// tier and color words only terminate club extraction past word index 4,
// because plenty of clubs carry them in their own name ("Premier SC").
var secondaryTerminators = map[string]struct{}{
	"gold": {}, "silver": {}, "bronze": {}, "blue": {}, "red": {},
	"white": {}, "black": {}, "green": {}, "orange": {}, "purple": {},
	"navy": {}, "royal": {}, "maroon": {}, "teal": {}, "grey": {}, "gray": {},
	"elite": {}, "premier": {}, "academy": {}, "select": {}, "central": {},
	"north": {}, "south": {}, "east": {}, "west": {},
}

// Fold lowercases s and strips combining marks so that "Barça" and "barca"
// compare equal.
func Fold(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Canonical is the comparison key stored alongside display names: folded,
// with runs of whitespace collapsed to single spaces.
func Canonical(s string) string {
	return Fold(strings.Join(strings.Fields(s), " "))
}

// CollapseDuplicatePrefix removes a club name that a provider repeated as a
// prefix of the team label ("Rush Rush Pre-ECNL" -> "Rush Pre-ECNL").
// Longer candidate prefixes are tried first so a multi-word club prefix is
// never mistaken for a one-word repeat. Collapsing repeats until the label is
// stable, which makes the transform idempotent.
func CollapseDuplicatePrefix(label string) string {
	out := strings.Join(strings.Fields(label), " ")
	for {
		collapsed := collapseOnce(out)
		if collapsed == out {
			return out
		}
		out = collapsed
	}
}

func collapseOnce(label string) string {
	words := strings.Fields(label)
	longest := len(words) / 2
	if longest > maxPrefixWords {
		longest = maxPrefixWords
	}

	for size := longest; size >= 1; size-- {
		match := true
		for i := 0; i < size; i++ {
			if Fold(words[i]) != Fold(words[i+size]) {
				match = false
				break
			}
		}
		if match {
			return strings.Join(words[size:], " ")
		}
	}

	return label
}

// ExtractClubName pulls the club portion out of a full team label.
// A primary identifier (birth year, age-group token, "Pre-" prefix) always
// ends the club name; past word index 4 a color/tier word does too, as does
// an all-caps restatement of the club after title-case words.
func ExtractClubName(label string) string {
	words := strings.Fields(CollapseDuplicatePrefix(label))
	if len(words) == 0 {
		return ""
	}

	end := -1
	sawTitleCase := false
	for i, word := range words {
		if isPrimaryIdentifier(word) {
			end = i
			break
		}
		if i > 4 {
			if _, ok := secondaryTerminators[Fold(word)]; ok {
				end = i
				break
			}
		}
		if sawTitleCase && isAllCapsWord(word) {
			end = i
			break
		}
		if isTitleCaseWord(word) {
			sawTitleCase = true
		}
	}

	if end < 0 {
		end = len(words)
		if end > 3 {
			end = 3
		}
	}
	if end == 0 {
		return ""
	}

	club := words[:end]
	if len(club) > 1 && abbreviationRegex.MatchString(club[len(club)-1]) {
		club = club[:len(club)-1]
	}

	out := make([]string, 0, len(club))
	for _, word := range club {
		out = append(out, titleCase(word))
	}
	return strings.Join(out, " ")
}

// BirthYearFromAgeGroup converts a reported age-group token to a birth year,
// given the calendar year the season ends in. "U12" with season 2026 means
// players born 2014; "14B" means the same for a 2028 season.
func BirthYearFromAgeGroup(text string, seasonEndYear int) *int {
	token := strings.TrimSpace(text)
	if token == "" || seasonEndYear <= 0 {
		return nil
	}

	if birthYearRegex.MatchString(token) {
		year, err := strconv.Atoi(token[:4])
		if err != nil {
			return nil
		}
		return &year
	}

	if !ageGroupRegex.MatchString(token) {
		return nil
	}
	digits := strings.TrimLeft(strings.TrimRight(token, "BGbg"), "Uu")
	age, err := strconv.Atoi(digits)
	if err != nil || age <= 0 {
		return nil
	}
	year := seasonEndYear - age
	return &year
}

func isPrimaryIdentifier(word string) bool {
	if birthYearRegex.MatchString(word) || ageGroupRegex.MatchString(word) {
		return true
	}
	return strings.HasPrefix(Fold(word), "pre-")
}

func isAllCapsWord(word string) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}

func isTitleCaseWord(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) && unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func titleCase(word string) string {
	if abbreviationRegex.MatchString(word) {
		return word
	}
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
