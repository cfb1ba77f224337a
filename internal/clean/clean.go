// Package clean normalizes message text before grouping and export. Two
// strictness levels share the same signature: Aggressive feeds the
// LLM-optimized artifact, Minimal feeds the recent-interactions artifact
// where even an "ok" carries signal.
package clean

import (
	"regexp"
	"strings"
)

// Func is the cleaning interface both configurations implement.
type Func func(content string) string

// System artifacts that are not part of the conversation itself.
var systemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(Read by .+?\)`),
	regexp.MustCompile(`\(Delivered.+?\)`),
	regexp.MustCompile(`This message responded to an earlier message\.?`),
	regexp.MustCompile(`Replied to ".+?"`),
	regexp.MustCompile(`Reacted to ".+?" with .+`),
	regexp.MustCompile(`Emphasized ".+?"`),
	regexp.MustCompile(`Liked ".+?"`),
	regexp.MustCompile(`Loved ".+?"`),
	regexp.MustCompile(`Laughed at ".+?"`),
	regexp.MustCompile(`Questioned ".+?"`),
	regexp.MustCompile(`Disliked ".+?"`),
	regexp.MustCompile(`Tapback: .+`),
	regexp.MustCompile(`\[.+?\]`),
}

var (
	ellipsisRe = regexp.MustCompile(`[.]{3,}`)
	bangRunRe  = regexp.MustCompile(`[!]{2,}`)
	questRunRe = regexp.MustCompile(`[?]{2,}`)
)

// Acknowledgement-only messages that add nothing to an optimized transcript.
var fillerWords = map[string]struct{}{
	"ok": {}, "okay": {}, "k": {}, "kk": {}, "lol": {}, "haha": {},
	"yeah": {}, "yes": {}, "no": {}, "np": {}, "yep": {}, "nope": {},
	"sure": {}, "cool": {}, "nice": {}, "alright": {}, "ty": {}, "thx": {},
	"thanks": {}, "hmm": {}, "mhm": {}, "yup": {}, "nah": {}, "sup": {},
	"hey": {}, "hi": {}, "hello": {}, "bye": {},
}

func stripSystemArtifacts(content string) string {
	for _, re := range systemPatterns {
		content = re.ReplaceAllString(content, "")
	}
	return content
}

func collapseWhitespace(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// Aggressive cleans content for the LLM-optimized artifact: emoji collapsing,
// system-artifact removal, filler suppression, punctuation normalization.
// Anything shorter than 3 characters after cleaning is discarded.
func Aggressive(content string) string {
	if content == "" {
		return ""
	}

	content = collapseWhitespace(content)
	content = processEmojis(content)
	content = stripSystemArtifacts(content)
	content = collapseWhitespace(content)

	if _, filler := fillerWords[strings.ToLower(strings.TrimSpace(content))]; filler {
		return ""
	}
	if len(strings.TrimSpace(content)) <= 2 {
		return ""
	}

	content = ellipsisRe.ReplaceAllString(content, "...")
	content = bangRunRe.ReplaceAllString(content, "!")
	content = questRunRe.ReplaceAllString(content, "?")
	return strings.TrimSpace(content)
}

// Minimal strips only system noise and collapses whitespace. Short messages
// survive: in recent-interaction analysis a bare "yes" matters.
func Minimal(content string) string {
	if content == "" {
		return ""
	}
	content = stripSystemArtifacts(content)
	return collapseWhitespace(content)
}
