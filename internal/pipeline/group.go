package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thejackluo/life-ai/internal/contact"
	"github.com/thejackluo/life-ai/internal/export"
	"github.com/thejackluo/life-ai/internal/index"
)

// groupOutcome is one group chat file's result.
type groupOutcome struct {
	Name         string
	FileName     string
	SafeName     string
	Status       string
	Detail       string
	MessageCount int
	Participants []string
}

// processGroupChats scans the export directory for group chat files: any
// .txt not claimed by a roster phone number whose name looks like a group
// conversation. Each qualifying file gets its own folder under _group_chats
// with the original transcript and a structured JSON.
func (r *Runner) processGroupChats(claimed map[string]bool) ([]*groupOutcome, error) {
	entries, err := os.ReadDir(r.exportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read export directory: %w", err)
	}

	var outcomes []*groupOutcome
	var summary []GroupSummaryEntry

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		if claimed[name] || !contact.IsGroupChatFilename(name) {
			continue
		}

		out, summaryEntry, err := r.processGroup(name)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, out)
		if summaryEntry != nil {
			summary = append(summary, *summaryEntry)
		}
	}

	if len(summary) > 0 {
		doc := GroupSummary{
			Metadata: GroupSummaryMeta{
				TotalGroupChats: len(summary),
				GeneratedAt:     r.now().Format("2006-01-02T15:04:05"),
				Format:          "group_chat_summary_v1",
			},
			GroupChats: summary,
		}
		path := filepath.Join(r.outputDir, GroupFolder, GroupSummaryFile)
		if err := writeJSON(path, doc); err != nil {
			return nil, err
		}
	}

	return outcomes, nil
}

func (r *Runner) processGroup(fileName string) (*groupOutcome, *GroupSummaryEntry, error) {
	groupName := strings.TrimSuffix(fileName, ".txt")
	out := &groupOutcome{
		Name:     groupName,
		FileName: fileName,
		SafeName: contact.SafeName(groupName),
	}

	data, err := os.ReadFile(filepath.Join(r.exportDir, fileName))
	if err != nil {
		slog.Warn("skipping unreadable group chat", "file", fileName, "error", err)
		out.Status = index.StatusSkipped
		out.Detail = "unreadable export file"
		return out, nil, nil
	}

	msgs, participants := export.ParseGroupChat(string(data), groupName)
	out.MessageCount = len(msgs)
	out.Participants = participants

	if len(msgs) == 0 {
		out.Status = index.StatusSkipped
		out.Detail = "no parseable messages"
		return out, nil, nil
	}
	if r.minCount >= 0 && len(msgs) < r.minCount {
		out.Status = index.StatusExcluded
		out.Detail = fmt.Sprintf("%d messages, minimum is %d", len(msgs), r.minCount)
		return out, nil, nil
	}

	groupDir := filepath.Join(r.outputDir, GroupFolder, out.SafeName)
	if err := os.MkdirAll(groupDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create group directory: %w", err)
	}

	// Keep the original transcript next to the structured JSON.
	if err := os.WriteFile(filepath.Join(groupDir, fileName), data, 0644); err != nil {
		return nil, nil, fmt.Errorf("failed to copy group transcript: %w", err)
	}

	doc := buildGroupDoc(groupName, fileName, msgs, participants, r.now())
	if err := writeJSON(filepath.Join(groupDir, GroupChatFile), doc); err != nil {
		return nil, nil, err
	}

	out.Status = index.StatusProcessed
	summaryEntry := &GroupSummaryEntry{
		GroupName:     groupName,
		FilePath:      filepath.Join(GroupFolder, out.SafeName, GroupChatFile),
		Participants:  participants,
		TotalMessages: len(msgs),
	}
	return out, summaryEntry, nil
}

func buildGroupDoc(groupName, fileName string, msgs []export.Message, participants []string, now time.Time) GroupChatDoc {
	total := len(msgs)
	sent := 0
	activity := make(map[string]int, len(participants))
	for _, p := range participants {
		activity[p] = 0
	}
	for _, m := range msgs {
		if m.Sender == export.SenderMe {
			sent++
			continue
		}
		if _, ok := activity[m.Sender]; ok {
			activity[m.Sender]++
		}
	}

	dateRange := "Unknown"
	spanDays := 0
	var first, last time.Time
	for _, m := range msgs {
		if m.Time.IsZero() {
			continue
		}
		if first.IsZero() || m.Time.Before(first) {
			first = m.Time
		}
		if m.Time.After(last) {
			last = m.Time
		}
	}
	if !first.IsZero() {
		dateRange = first.Format("2006-01-02") + " to " + last.Format("2006-01-02")
		spanDays = int(last.Sub(first).Hours() / 24)
	}

	frequency := float64(total)
	if spanDays > 0 {
		frequency = math.Round(float64(total)/float64(spanDays)*100) / 100
	}

	return GroupChatDoc{
		GroupName: groupName,
		FileName:  fileName,
		Type:      "group_chat",
		Participants: GroupParticipants{
			PhoneNumbers: participants,
			Count:        len(participants),
			Activity:     activity,
		},
		ConversationInsights: GroupInsights{
			TotalMessages:          total,
			SentMessages:           sent,
			ReceivedMessages:       total - sent,
			DateRange:              dateRange,
			ConversationSpanDays:   spanDays,
			MessageFrequencyPerDay: frequency,
			MostActiveParticipant:  mostActiveParticipant(activity),
		},
		MessageHistory: []GroupHistoryRef{{
			Filename: fileName,
			Path:     fileName,
			Type:     "group_chat_messages",
		}},
		Metadata: DocMeta{
			GeneratedAt: now.Format("2006-01-02T15:04:05"),
			Format:      "group_chat_export_v1",
		},
	}
}

// mostActiveParticipant breaks count ties on the lowest sorted id so the
// output is reproducible.
func mostActiveParticipant(activity map[string]int) string {
	if len(activity) == 0 {
		return "unknown"
	}
	ids := make([]string, 0, len(activity))
	for id := range activity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	best := ids[0]
	for _, id := range ids[1:] {
		if activity[id] > activity[best] {
			best = id
		}
	}
	return best
}
