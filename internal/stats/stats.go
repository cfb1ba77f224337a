// Package stats computes aggregate conversation statistics for artifact
// documents. Everything here is a pure function over processed timelines.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/thejackluo/life-ai/internal/export"
	"github.com/thejackluo/life-ai/internal/group"
)

// ConversationMetadata summarizes one contact's optimized timeline.
type ConversationMetadata struct {
	TotalMessages          int            `json:"total_messages"`
	SentMessages           int            `json:"sent_messages"`
	ReceivedMessages       int            `json:"received_messages"`
	DateRange              string         `json:"date_range"`
	ConversationSpanDays   int            `json:"conversation_span_days"`
	MessageFrequencyPerDay float64        `json:"message_frequency_per_day"`
	MostActiveNumber       string         `json:"most_active_number"`
	PhoneNumberUsage       map[string]int `json:"phone_number_usage"`
}

// FromTurns builds metadata over grouped turns plus the per-source usage
// counts collected during the merge.
func FromTurns(turns []group.Turn, usage map[string]int) ConversationMetadata {
	return fromTurnsAt(turns, usage, time.Now())
}

func fromTurnsAt(turns []group.Turn, usage map[string]int, now time.Time) ConversationMetadata {
	md := ConversationMetadata{PhoneNumberUsage: usage}
	if len(turns) == 0 {
		md.DateRange = "Unknown"
		md.MostActiveNumber = mostActive(usage)
		return md
	}

	md.TotalMessages = len(turns)
	for _, t := range turns {
		switch t.Sender {
		case export.SenderMe:
			md.SentMessages++
		case export.SenderContact:
			md.ReceivedMessages++
		}
	}

	first := turns[0]
	if !first.Time.IsZero() {
		md.DateRange = first.Time.Format("2006-01-02") + " to present"
		md.ConversationSpanDays = int(now.Sub(first.Time).Hours() / 24)
	} else {
		// Unparsed first timestamp: keep the raw text rather than guessing.
		md.DateRange = first.Timestamp + " to present"
	}

	spanDays := md.ConversationSpanDays
	if spanDays < 1 {
		spanDays = 1
	}
	md.MessageFrequencyPerDay = round2(float64(md.TotalMessages) / float64(spanDays))
	md.MostActiveNumber = mostActive(usage)
	return md
}

// mostActive returns the source with the highest usage count; ties go to the
// lowest source identifier so output is reproducible.
func mostActive(usage map[string]int) string {
	if len(usage) == 0 {
		return "unknown"
	}
	sources := make([]string, 0, len(usage))
	for s := range usage {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	best := sources[0]
	for _, s := range sources[1:] {
		if usage[s] > usage[best] {
			best = s
		}
	}
	return best
}

// InteractionAnalysis summarizes the recent-interactions window for
// communication-pattern context.
type InteractionAnalysis struct {
	MessageCount            int     `json:"message_count"`
	UserMessages            int     `json:"user_messages"`
	ContactMessages         int     `json:"contact_messages"`
	ResponsePairs           int     `json:"response_pairs"`
	UserAvgMessageLength    float64 `json:"user_avg_message_length"`
	ContactAvgMessageLength float64 `json:"contact_avg_message_length"`
	TimespanHours           float64 `json:"timespan_hours"`
	InteractionRatio        float64 `json:"interaction_ratio"`
}

// AnalyzeInteractions computes response-pattern statistics over the (already
// minimally cleaned) recent message window.
func AnalyzeInteractions(msgs []export.Message) InteractionAnalysis {
	var a InteractionAnalysis
	if len(msgs) == 0 {
		return a
	}

	a.MessageCount = len(msgs)
	var userLen, contactLen int
	for _, m := range msgs {
		switch m.Sender {
		case export.SenderMe:
			a.UserMessages++
			userLen += len(m.Content)
		case export.SenderContact:
			a.ContactMessages++
			contactLen += len(m.Content)
		}
	}
	for i := 0; i+1 < len(msgs); i++ {
		if msgs[i].Sender != msgs[i+1].Sender {
			a.ResponsePairs++
		}
	}

	if a.UserMessages > 0 {
		a.UserAvgMessageLength = round1(float64(userLen) / float64(a.UserMessages))
		a.InteractionRatio = round2(float64(a.ContactMessages) / float64(a.UserMessages))
	}
	if a.ContactMessages > 0 {
		a.ContactAvgMessageLength = round1(float64(contactLen) / float64(a.ContactMessages))
	}

	first, last := msgs[0].Time, msgs[len(msgs)-1].Time
	if !first.IsZero() && !last.IsZero() && last.After(first) {
		a.TimespanHours = round2(last.Sub(first).Hours())
	}
	return a
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
