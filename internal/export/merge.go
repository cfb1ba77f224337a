package export

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceCandidates returns the export filenames to probe for one phone
// number, in preference order: the exact normalized value, then a digits-only
// variant. The first file that exists wins for that source.
func SourceCandidates(phone string) []string {
	return []string{
		phone + ".txt",
		strings.ReplaceAll(phone, "+", "") + ".txt",
	}
}

// MergeSources parses every export file found for the contact's phone numbers
// and merges the records into one chronological timeline. A phone number with
// no export file contributes zero messages; the contact is still processed
// from the remaining sources. The returned usage map counts messages per
// contributing source.
func MergeSources(exportDir string, phones []string) ([]Message, map[string]int) {
	var merged []Message
	usage := make(map[string]int)

	for _, phone := range phones {
		for _, name := range SourceCandidates(phone) {
			path := filepath.Join(exportDir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				slog.Warn("skipping unreadable source file", "path", path, "error", err)
				break
			}
			msgs := ParseConversation(string(data), phone)
			merged = append(merged, msgs...)
			usage[phone] = len(msgs)
			break
		}
	}

	sortTimeline(merged)
	return merged, usage
}

// sortTimeline orders messages by parsed timestamp ascending. Messages whose
// timestamp failed to parse have the zero time and therefore sort first —
// they are retained, not repaired. Ties keep per-source relative order, with
// the lower source identifier ahead, so a merge is reproducible.
func sortTimeline(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Time.Equal(msgs[j].Time) {
			return msgs[i].Time.Before(msgs[j].Time)
		}
		return msgs[i].Source < msgs[j].Source
	})
}

// CountMessages scans raw export content and counts the timestamp lines that
// open message blocks. Used as a cheap prefilter before full parsing.
func CountMessages(content string) int {
	count := 0
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if _, ok := MatchTimestamp(strings.TrimSpace(sc.Text())); ok {
			count++
		}
	}
	return count
}

// CountSourceMessages applies CountMessages across every source file found
// for the given phone numbers.
func CountSourceMessages(exportDir string, phones []string) int {
	total := 0
	for _, phone := range phones {
		for _, name := range SourceCandidates(phone) {
			data, err := os.ReadFile(filepath.Join(exportDir, name))
			if err != nil {
				continue
			}
			total += CountMessages(string(data))
			break
		}
	}
	return total
}

// ConsolidatedTranscript renders a merged timeline back into the export text
// format: raw timestamp line, sender line, content, blank separator. Sender
// lines that were raw phone tokens are rewritten to the probed source number
// so a reader can tell which number carried the message.
func ConsolidatedTranscript(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.TimeRaw)
		b.WriteByte('\n')

		sender := m.SenderRaw
		switch {
		case sender == "":
			sender = "Unknown"
		case strings.HasPrefix(sender, "+") || strings.HasPrefix(sender, "1"):
			sender = m.Source
		}
		b.WriteString(sender)
		b.WriteByte('\n')

		b.WriteString(m.Content)
		b.WriteByte('\n')
		for _, r := range m.Receipts {
			b.WriteString(r)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
