package services

import "regexp"

// BannedWords trip the comment content screen. Matching is whole-word and
// case-insensitive.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
}

// ContentFilter screens comment text before it is stored. Report titles and
// descriptions are left alone: a safety report may legitimately quote what
// was said or seen.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{}
	f.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			f.bannedWordRegexps = append(f.bannedWordRegexps, re)
		}
	}
	f.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	// Go's RE2 engine has no backreferences, so `([a-z!?.])\1{4,}` is written
	// out as an alternation of each character repeated five or more times.
	f.repeatedCharPattern = regexp.MustCompile(`(?i)(a{5,}|b{5,}|c{5,}|d{5,}|e{5,}|f{5,}|g{5,}|h{5,}|i{5,}|j{5,}|k{5,}|l{5,}|m{5,}|n{5,}|o{5,}|p{5,}|q{5,}|r{5,}|s{5,}|t{5,}|u{5,}|v{5,}|w{5,}|x{5,}|y{5,}|z{5,}|!{5,}|\?{5,}|\.{5,})`)
	return f
}

// Check returns ok=false with a reason code when the text violates the
// content rules.
func (f *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if f.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	return true, ""
}

// RejectionMessage maps a reason code to the user-facing message.
func (f *ContentFilter) RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language": "Your comment contains inappropriate language.",
		"url_not_allowed":        "URLs and web links are not allowed in comments.",
		"spam_detected":          "Your comment appears to be spam.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your comment does not meet the content guidelines."
}
