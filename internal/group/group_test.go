package group

import (
	"testing"
	"time"

	"github.com/thejackluo/life-ai/internal/export"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func msg(t *testing.T, ts, sender, content string) export.Message {
	t.Helper()
	parsed := at(t, ts)
	return export.Message{
		Time:    parsed,
		TimeRaw: ts,
		Sender:  sender,
		Content: content,
	}
}

func TestConsecutive_MergesSameSenderWithinWindow(t *testing.T) {
	msgs := []export.Message{
		msg(t, "2024-01-01 09:00:00", export.SenderMe, "hey there friend"),
		msg(t, "2024-01-01 09:01:00", export.SenderMe, "want to grab food"),
		msg(t, "2024-01-01 09:02:00", export.SenderContact, "sounds good to me"),
		msg(t, "2024-01-01 09:03:00", export.SenderMe, "great, see you then"),
	}

	turns := Consecutive(msgs, Options{})
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].Content != "hey there friend want to grab food" {
		t.Errorf("turns[0].Content=%q", turns[0].Content)
	}
	if turns[0].Sender != export.SenderMe {
		t.Errorf("turns[0].Sender=%q", turns[0].Sender)
	}
	if turns[1].Sender != export.SenderContact {
		t.Errorf("turns[1].Sender=%q", turns[1].Sender)
	}
	// timestamp of a turn is its first message's
	if turns[0].Timestamp != msgs[0].Timestamp() {
		t.Errorf("turns[0].Timestamp=%q want %q", turns[0].Timestamp, msgs[0].Timestamp())
	}
}

func TestConsecutive_WindowBreaksTurn(t *testing.T) {
	msgs := []export.Message{
		msg(t, "2024-01-01 09:00:00", export.SenderMe, "message number one"),
		msg(t, "2024-01-01 09:20:00", export.SenderMe, "message number two"),
	}

	turns := Consecutive(msgs, Options{})
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2 (gap exceeds window)", len(turns))
	}
}

func TestConsecutive_NearDuplicateSkipped(t *testing.T) {
	msgs := []export.Message{
		msg(t, "2024-01-01 09:00:00", export.SenderMe, "are we still on for tonight"),
		msg(t, "2024-01-01 09:01:00", export.SenderMe, "are we still on for tonight"),
		msg(t, "2024-01-01 09:02:00", export.SenderMe, "bringing dessert too"),
	}

	turns := Consecutive(msgs, Options{})
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	if turns[0].Content != "are we still on for tonight bringing dessert too" {
		t.Errorf("Content=%q", turns[0].Content)
	}
}

func TestConsecutive_UnparsedTimestampStartsNewTurn(t *testing.T) {
	msgs := []export.Message{
		msg(t, "2024-01-01 09:00:00", export.SenderMe, "dated message here"),
		{TimeRaw: "garbled", Sender: export.SenderMe, Content: "undated message here"},
	}

	turns := Consecutive(msgs, Options{})
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
}

func TestConsecutive_CleanedEmptyDropped(t *testing.T) {
	msgs := []export.Message{
		msg(t, "2024-01-01 09:00:00", export.SenderMe, "ok"), // filler
		msg(t, "2024-01-01 09:01:00", export.SenderContact, "actual message content"),
	}

	turns := Consecutive(msgs, Options{})
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	if turns[0].Sender != export.SenderContact {
		t.Errorf("Sender=%q", turns[0].Sender)
	}
}

func TestConsecutive_AlternatingSenders(t *testing.T) {
	var msgs []export.Message
	senders := []string{
		export.SenderMe, export.SenderContact, export.SenderMe,
		export.SenderContact, export.SenderMe, export.SenderContact,
	}
	times := []string{
		"2024-01-01 09:00:00", "2024-01-01 09:01:00", "2024-01-01 09:02:00",
		"2024-01-01 09:03:00", "2024-01-01 09:04:00", "2024-01-01 09:05:00",
	}
	contents := []string{
		"first message body", "second message body", "third message body",
		"fourth message body", "fifth message body", "sixth message body",
	}
	for i := range senders {
		msgs = append(msgs, msg(t, times[i], senders[i], contents[i]))
	}

	turns := Consecutive(msgs, Options{})
	if len(turns) != 6 {
		t.Fatalf("got %d turns, want 6", len(turns))
	}
	for i, turn := range turns {
		if turn.Sender != senders[i] {
			t.Errorf("turns[%d].Sender=%q want %q", i, turn.Sender, senders[i])
		}
	}
}

func TestConsecutive_IdempotentOnOwnOutput(t *testing.T) {
	msgs := []export.Message{
		msg(t, "2024-01-01 09:00:00", export.SenderMe, "hey there friend"),
		msg(t, "2024-01-01 09:01:00", export.SenderMe, "want to grab food"),
		msg(t, "2024-01-01 09:02:00", export.SenderContact, "sounds good to me"),
		msg(t, "2024-01-01 09:30:00", export.SenderContact, "leaving work right now"),
		msg(t, "2024-01-01 09:31:00", export.SenderMe, "see you at the corner spot"),
	}
	first := Consecutive(msgs, Options{})
	if len(first) != 4 {
		t.Fatalf("got %d turns, want 4", len(first))
	}

	rebuilt := make([]export.Message, len(first))
	for i, turn := range first {
		rebuilt[i] = export.Message{
			Time:    turn.Time,
			TimeRaw: turn.Timestamp,
			Sender:  turn.Sender,
			Content: turn.Content,
		}
	}
	second := Consecutive(rebuilt, Options{})

	if len(second) != len(first) {
		t.Fatalf("regrouping changed turn count: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if second[i] != first[i] {
			t.Errorf("turn %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
}
