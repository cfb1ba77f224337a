// Package group merges consecutive same-sender messages into conversation
// turns.
package group

import (
	"strings"
	"time"

	"github.com/thejackluo/life-ai/internal/clean"
	"github.com/thejackluo/life-ai/internal/export"
)

// DefaultWindow is the maximum gap between a turn's first message and a
// record that may still join the turn.
const DefaultWindow = 10 * time.Minute

// DuplicateRatio is the substring-length ratio above which a continuation is
// treated as a near-duplicate of the turn so far. A simple heuristic, kept
// tunable; it can under- or over-merge unusual phrasings.
const DuplicateRatio = 0.8

// Turn is one logical utterance: one or more consecutive messages from the
// same sender inside the time window, cleaned and concatenated.
type Turn struct {
	Time      time.Time
	Timestamp string
	Sender    string
	Content   string
}

// Options configure grouping. Zero values fall back to the default window and
// the aggressive cleaner.
type Options struct {
	Window time.Duration
	Clean  clean.Func
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Clean == nil {
		o.Clean = clean.Aggressive
	}
	return o
}

// Consecutive groups a chronological timeline into turns. Records that clean
// to empty are dropped. A turn never spans senders, and a record whose
// timestamp failed to parse always starts a new turn rather than being
// merged somewhere it may not belong. Turns shorter than 3 characters after
// grouping are discarded.
func Consecutive(msgs []export.Message, opts Options) []Turn {
	opts = opts.withDefaults()

	var turns []Turn
	var cur *Turn

	for _, m := range msgs {
		content := opts.Clean(m.Content)
		if content == "" {
			continue
		}

		if cur == nil || m.Sender != cur.Sender || startsNewTurn(cur.Time, m.Time, opts.Window) {
			if cur != nil {
				turns = append(turns, *cur)
			}
			cur = &Turn{
				Time:      m.Time,
				Timestamp: m.Timestamp(),
				Sender:    m.Sender,
				Content:   content,
			}
			continue
		}

		existing := strings.ToLower(cur.Content)
		incoming := strings.ToLower(content)
		if strings.Contains(existing, incoming) || nearDuplicate(existing, incoming) {
			continue
		}
		cur.Content += " " + content
	}
	if cur != nil {
		turns = append(turns, *cur)
	}

	kept := turns[:0]
	for _, t := range turns {
		if len(t.Content) >= 3 {
			kept = append(kept, t)
		}
	}
	return kept
}

// startsNewTurn reports whether the gap between the turn start and the next
// record exceeds the window. Unparsable timestamps force a new turn.
func startsNewTurn(turnStart, next time.Time, window time.Duration) bool {
	if turnStart.IsZero() || next.IsZero() {
		return true
	}
	return next.Sub(turnStart) > window
}

// nearDuplicate reports whether the shorter string is contained in the longer
// one and the two are close in length.
func nearDuplicate(a, b string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 || len(longer) == 0 {
		return false
	}
	return strings.Contains(longer, shorter) &&
		float64(len(shorter))/float64(len(longer)) > DuplicateRatio
}
