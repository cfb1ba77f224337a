package export

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/thejackluo/life-ai/internal/contact"
)

var (
	phoneSenderRe = regexp.MustCompile(`^\+?\d{10,15}$`)
	emailSenderRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

var receiptPrefixes = []string{"(Read by", "(Delivered", "Tapbacks:"}

func isReceiptLine(line string) bool {
	for _, p := range receiptPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// ParseConversation parses a one-on-one export file into messages. A
// recognized timestamp line starts a new message and flushes the previous
// one; blank lines are not boundaries here. The line immediately after a
// timestamp is the sender indicator ("Me", a phone number, or an email
// address); anything unrecognized in that position is kept as content rather
// than dropped.
func ParseConversation(content, source string) []Message {
	p := &blockParser{source: source}
	p.scan(content)
	return p.messages
}

// ParseGroupChat parses a group-chat export file. Unlike the one-on-one
// variant, a blank line after a timestamp/sender/content sequence flushes the
// current message, and phone or email senders are kept verbatim (normalized)
// and collected as participants.
func ParseGroupChat(content, source string) ([]Message, []string) {
	p := &blockParser{source: source, group: true}
	p.scan(content)
	return p.messages, p.participants
}

type blockParser struct {
	source string
	group  bool

	messages     []Message
	participants []string
	seen         map[string]struct{}

	cur          *Message
	parts        []string
	expectSender bool
}

func (p *blockParser) scan(content string) {
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line(strings.TrimSpace(sc.Text()))
	}
	p.flush()
}

func (p *blockParser) line(line string) {
	if line == "" {
		if p.group {
			p.flush()
			p.expectSender = false
		}
		return
	}

	if ts, ok := MatchTimestamp(line); ok {
		p.flush()
		m := Message{TimeRaw: ts, Sender: SenderUnknown, Source: p.source}
		if t, ok := ParseTimestamp(ts); ok {
			m.Time = t
		}
		p.cur = &m
		p.expectSender = true
		return
	}

	if p.cur == nil {
		// Preamble before the first timestamp carries no message.
		return
	}

	if p.expectSender {
		p.expectSender = false
		if p.sender(line) {
			return
		}
		// Unrecognized sender line: keep it as content.
	}

	if isReceiptLine(line) {
		p.cur.Receipts = append(p.cur.Receipts, line)
		return
	}

	p.parts = append(p.parts, line)
}

// sender classifies the line after a timestamp. Returns false when the line
// is not a recognizable sender indicator.
func (p *blockParser) sender(line string) bool {
	switch {
	case line == "Me" || line == "me":
		p.cur.Sender = SenderMe
		p.cur.SenderRaw = line
	case phoneSenderRe.MatchString(line):
		p.cur.SenderRaw = line
		if p.group {
			normalized := contact.NormalizePhone(line)
			p.cur.Sender = normalized
			p.addParticipant(normalized)
		} else {
			p.cur.Sender = SenderContact
		}
	case emailSenderRe.MatchString(line):
		p.cur.SenderRaw = line
		if p.group {
			p.cur.Sender = line
			p.addParticipant(line)
		} else {
			p.cur.Sender = SenderContact
		}
	default:
		return false
	}
	return true
}

func (p *blockParser) addParticipant(id string) {
	if p.seen == nil {
		p.seen = make(map[string]struct{})
	}
	if _, ok := p.seen[id]; ok {
		return
	}
	p.seen[id] = struct{}{}
	p.participants = append(p.participants, id)
}

func (p *blockParser) flush() {
	if p.cur == nil {
		return
	}
	content := strings.Join(p.parts, " ")
	if content != "" {
		p.cur.Content = content
		p.messages = append(p.messages, *p.cur)
	}
	p.cur = nil
	p.parts = nil
}
