package privacy

import "regexp"

// Detection patterns, applied to message content in a fixed order: full
// emails, partial emails (user@gmail with no TLD), phone numbers, social
// profile links and mentions, username disclosures, then credentials. Later
// rules see text the earlier rules already rewrote, so an email never gets a
// second hit from the generic @mention rule.

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var partialEmailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\b`)

// Optional country code, optional parens around the area code, and any of
// -, . or space between groups. Anchored at the end only: a trailing word
// boundary keeps us off the front half of longer digit runs.
var phoneRe = regexp.MustCompile(`\b(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)

// Each social rule captures the handle; the full match is what gets
// replaced. The bare @mention rule goes last so profile URLs take their more
// specific rule first.
var socialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:twitter\.com|x\.com)/([A-Za-z0-9_]+)`),
	regexp.MustCompile(`(?:instagram\.com)/([A-Za-z0-9_\.]+)`),
	regexp.MustCompile(`(?:linkedin\.com/in)/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?:facebook\.com)/([A-Za-z0-9\.]+)`),
	regexp.MustCompile(`(?:github\.com)/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`@([A-Za-z0-9_]+)`),
}

// People volunteer usernames in prose ("my github username is octocat")
// without ever pasting a link. These catch the common phrasings; the capture
// is the username, and only the username inside the match is rewritten so the
// surrounding sentence stays readable.
var usernameContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)github\s+username\s+is\s+([A-Za-z0-9_-]{3,})`),
	regexp.MustCompile(`(?i)gh\s+username\s+is\s+([A-Za-z0-9_-]{3,})`),
	regexp.MustCompile(`(?i)github\s+user\s+is\s+([A-Za-z0-9_-]{3,})`),
	regexp.MustCompile(`(?i)twitter\s+handle\s+is\s+@?([A-Za-z0-9_]{3,})`),
	regexp.MustCompile(`(?i)instagram\s+(?:is|username)\s+@?([A-Za-z0-9_\.]{3,})`),
	regexp.MustCompile(`(?i)ig\s+(?:is|username)\s+@?([A-Za-z0-9_\.]{3,})`),
	regexp.MustCompile(`(?i)linkedin\s+(?:is|profile)\s+([A-Za-z0-9_-]{3,})`),
	regexp.MustCompile(`(?i)facebook\s+(?:is|username)\s+([A-Za-z0-9\.]{3,})`),
	regexp.MustCompile(`(?i)discord\s+(?:is|tag)\s+([A-Za-z0-9_#\.]{3,})`),
	regexp.MustCompile(`(?i)telegram\s+(?:is|username)\s+@?([A-Za-z0-9_]{3,})`),
	regexp.MustCompile(`(?i)my\s+username\s+(?:is|:)\s+([A-Za-z0-9_\.-]{3,})`),
	regexp.MustCompile(`(?i)username\s+(?:is|:)\s+([A-Za-z0-9_\.-]{3,})`),
	regexp.MustCompile(`(?i)my\s+github\s+username\s+is\s+([A-Za-z0-9_-]{3,})`),
	regexp.MustCompile(`(?i)my\s+twitter\s+(?:handle|username)\s+is\s+@?([A-Za-z0-9_]{3,})`),
}

// Credential disclosures: context phrase followed by the secret itself. The
// capture (the secret) is redacted and never written to any mapping file.
var passwordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)password\s+(?:is|:)\s+([A-Za-z0-9!@#$%^&*()_+\-=\[\]{}|;:,.<>?]{6,})`),
	regexp.MustCompile(`(?i)pwd\s+(?:is|:)\s+([A-Za-z0-9!@#$%^&*()_+\-=\[\]{}|;:,.<>?]{6,})`),
	regexp.MustCompile(`(?i)credentials\s+(?:are|is|:)\s+([A-Za-z0-9!@#$%^&*()_+\-=\[\]{}|;:,.<>?]{6,})`),
	regexp.MustCompile(`(?i)login\s+(?:is|:)\s+([A-Za-z0-9!@#$%^&*()_+\-=\[\]{}|;:,.<>?]{6,})`),
	regexp.MustCompile(`(?i)passw[o0]rd\s*[=:]\s*([A-Za-z0-9!@#$%^&*()_+\-=\[\]{}|;:,.<>?]{6,})`),
	regexp.MustCompile(`(?i)the\s+password\s+(?:is|:)\s+([A-Za-z0-9!@#$%^&*()_+\-=\[\]{}|;:,.<>?]{6,})`),
}
