package clean

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
)

// Short replacements for common pictographs. Everything else degrades to a
// generic (emoji) marker or is stripped when the slug is long and noisy.
var emojiReplacements = map[string]string{
	":face-with-tears-of-joy:":         "(laughing)",
	":rolling-on-the-floor-laughing:":  "(laughing)",
	":red-heart:":                      "(heart)",
	":smiling-face-with-heart-eyes:":   "(heart eyes)",
	":thumbs-up:":                      "(thumbs up)",
	":thumbs-down:":                    "(thumbs down)",
	":fire:":                           "(fire)",
	":clapping-hands:":                 "(clapping)",
	":folded-hands:":                   "(praying)",
	":crying-face:":                    "(crying)",
	":kissing-face:":                   "(kiss)",
	":thinking-face:":                  "(thinking)",
	":face-with-rolling-eyes:":         "(eye roll)",
	":person-shrugging:":               "(shrug)",
	":star-struck:":                    "(amazed)",
	":partying-face:":                  "(party)",
	":smiling-face:":                   "",
	":winking-face:":                   "",
	":grinning-face:":                  "",
	":beaming-face-with-smiling-eyes:": "",
}

var (
	tagRe      = regexp.MustCompile(`:[A-Za-z0-9_-]+:`)
	longTagRe  = regexp.MustCompile(`:[A-Za-z0-9_-]{15,}:`)
	emojiRunRe = regexp.MustCompile(`\(emoji\)(\s*\(emoji\))+`)
)

// demojize replaces every pictograph in content with a :slug: tag, the same
// shape Python's emoji.demojize produces.
func demojize(content string) string {
	found := gomoji.FindAll(content)
	if len(found) == 0 {
		return content
	}
	pairs := make([]string, 0, len(found)*2)
	for _, e := range found {
		pairs = append(pairs, e.Character, ":"+e.Slug+":")
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

// collapseDuplicateTags reduces directly adjacent runs of the same tag
// (":heart::heart::heart:") to a single occurrence.
func collapseDuplicateTags(content string) string {
	locs := tagRe.FindAllStringIndex(content, -1)
	if len(locs) < 2 {
		return content
	}
	var b strings.Builder
	prevEnd := 0
	lastTag := ""
	lastEnd := -1
	for _, loc := range locs {
		tag := content[loc[0]:loc[1]]
		b.WriteString(content[prevEnd:loc[0]])
		if loc[0] == lastEnd && tag == lastTag {
			// adjacent duplicate, drop it
		} else {
			b.WriteString(tag)
			lastTag = tag
		}
		lastEnd = loc[1]
		prevEnd = loc[1]
	}
	b.WriteString(content[prevEnd:])
	return b.String()
}

// processEmojis applies the aggressive emoji policy: tag, dedupe runs, map
// common tags to short parentheticals, strip long slugs, degrade the rest to
// one (emoji) marker and collapse repeats of that marker.
func processEmojis(content string) string {
	if content == "" {
		return content
	}

	content = demojize(content)
	content = collapseDuplicateTags(content)

	for tag, replacement := range emojiReplacements {
		content = strings.ReplaceAll(content, tag, replacement)
	}

	content = longTagRe.ReplaceAllString(content, "")
	content = tagRe.ReplaceAllString(content, "(emoji)")
	content = emojiRunRe.ReplaceAllString(content, "(emoji)")

	if strings.TrimSpace(content) == "(emoji)" {
		return ""
	}
	return strings.Join(strings.Fields(content), " ")
}
