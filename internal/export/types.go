package export

import "time"

// Sender classifications for one-on-one conversations. Group chats keep the
// raw participant identifier (normalized phone or email) as the sender.
const (
	SenderMe      = "me"
	SenderContact = "contact"
	SenderUnknown = "unknown"
)

// Message is a single parsed message block from an export file. It is not
// modified after parsing; cleaning and grouping produce new values.
type Message struct {
	// Time is the parsed timestamp, zero when TimeRaw could not be parsed.
	// Unparsed messages sort before everything else (see MergeSources).
	Time    time.Time
	TimeRaw string

	Sender    string
	SenderRaw string

	Content string

	// Receipts holds read/delivery lines that accompanied the message.
	Receipts []string

	// Source identifies the export file this message came from (a phone
	// number for individual conversations, a group identifier otherwise).
	Source string
}

// Timestamp returns the ISO form of the parsed time, or the raw line text
// when parsing failed. This is what artifact documents carry.
func (m Message) Timestamp() string {
	if !m.Time.IsZero() {
		return m.Time.Format(time.RFC3339)
	}
	return m.TimeRaw
}
