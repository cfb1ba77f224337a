package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thejackluo/life-ai/internal/clean"
	"github.com/thejackluo/life-ai/internal/contact"
	"github.com/thejackluo/life-ai/internal/export"
	"github.com/thejackluo/life-ai/internal/group"
	"github.com/thejackluo/life-ai/internal/index"
	"github.com/thejackluo/life-ai/internal/privacy"
	"github.com/thejackluo/life-ai/internal/stats"
)

// contactOutcome is everything the master-file builder and the run ledger
// need to know about one contact after processing.
type contactOutcome struct {
	Contact  contact.Contact
	SafeName string
	Status   string
	Detail   string

	RawCount  int
	TurnCount int

	FilePath   string
	RecentPath string

	Metadata  stats.ConversationMetadata
	Analysis  stats.InteractionAnalysis
	HasRecent bool

	Mapping *privacy.Mapping

	// Index-facing identity: placeholders when privacy is on, real
	// values otherwise.
	IndexName    string
	IndexPhones  []string
	IndexEmails  []string
	MostActive   string
	Organization string
}

// processContact runs the full per-contact pipeline. Only output-directory
// failures return an error; a contact with missing or thin export data
// comes back with a skipped or excluded status instead.
func (r *Runner) processContact(c contact.Contact) (*contactOutcome, error) {
	out := &contactOutcome{
		Contact:   c,
		SafeName:  contact.SafeName(c.Name),
		IndexName: c.Name,
	}

	out.RawCount = export.CountSourceMessages(r.exportDir, c.Phones)
	if out.RawCount == 0 {
		out.Status = index.StatusSkipped
		out.Detail = "no export files found"
		return out, nil
	}
	if r.minCount >= 0 && out.RawCount < r.minCount {
		out.Status = index.StatusExcluded
		out.Detail = fmt.Sprintf("%d messages, minimum is %d", out.RawCount, r.minCount)
		return out, nil
	}

	msgs, usage := export.MergeSources(r.exportDir, c.Phones)
	if len(msgs) == 0 {
		out.Status = index.StatusSkipped
		out.Detail = "no parseable messages"
		return out, nil
	}

	turns := group.Consecutive(msgs, group.Options{Window: r.window})
	out.TurnCount = len(turns)
	out.Metadata = stats.FromTurns(turns, usage)

	recent := recentWindow(msgs, r.recentCount)
	out.HasRecent = len(recent) > 0
	if out.HasRecent {
		out.Analysis = stats.AnalyzeInteractions(recent)
	}

	contactDir := filepath.Join(r.outputDir, out.SafeName)
	if err := os.MkdirAll(contactDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create contact directory: %w", err)
	}

	// The consolidated transcript keeps the raw merged timeline in export
	// text form. It stays in the contact folder and is never LLM-bound,
	// so it is not anonymized.
	transcript := export.ConsolidatedTranscript(msgs)
	if err := os.WriteFile(filepath.Join(contactDir, TranscriptFile), []byte(transcript), 0644); err != nil {
		return nil, fmt.Errorf("failed to write transcript: %w", err)
	}

	info := ContactInfo{
		Name:         c.Name,
		PhoneNumbers: append([]string(nil), c.Phones...),
		Emails:       append([]string(nil), c.Emails...),
		Organization: c.Organization,
		Title:        c.Title,
	}
	meta := out.Metadata

	turnRecords := make([]TurnRecord, 0, len(turns))
	for _, t := range turns {
		turnRecords = append(turnRecords, TurnRecord{Timestamp: t.Timestamp, Sender: t.Sender, Content: t.Content})
	}
	recentRecords := make([]TurnRecord, 0, len(recent))
	for _, m := range recent {
		recentRecords = append(recentRecords, TurnRecord{Timestamp: m.Timestamp(), Sender: m.Sender, Content: m.Content})
	}

	out.IndexPhones = info.PhoneNumbers
	out.IndexEmails = info.Emails
	out.MostActive = meta.MostActiveNumber
	out.Organization = c.Organization

	if r.anonymize {
		session := privacy.NewSession(r.reg, c.Name)

		info.Name = session.Placeholder()
		for i, p := range info.PhoneNumbers {
			info.PhoneNumbers[i] = session.PhoneFor(p)
		}
		for i, e := range info.Emails {
			info.Emails[i] = session.EmailFor(e)
		}
		info.Organization = session.OrganizationFor(info.Organization)
		for _, a := range c.Addresses {
			session.AddressFor(a)
		}

		if meta.MostActiveNumber != "" {
			meta.MostActiveNumber = session.PhoneFor(meta.MostActiveNumber)
		}
		if meta.PhoneNumberUsage != nil {
			rewritten := make(map[string]int, len(meta.PhoneNumberUsage))
			for phone, count := range meta.PhoneNumberUsage {
				rewritten[session.PhoneFor(phone)] = count
			}
			meta.PhoneNumberUsage = rewritten
		}

		for i := range turnRecords {
			turnRecords[i].Content = session.Redact(turnRecords[i].Content)
		}
		for i := range recentRecords {
			recentRecords[i].Content = session.Redact(recentRecords[i].Content)
		}

		out.Mapping = session.Mapping()
		out.IndexName = session.Placeholder()
		out.IndexPhones = info.PhoneNumbers
		out.IndexEmails = info.Emails
		out.MostActive = meta.MostActiveNumber
		out.Organization = info.Organization

		if err := writeJSON(filepath.Join(contactDir, MappingFile), out.Mapping); err != nil {
			return nil, err
		}
	}
	out.Metadata = meta

	doc := ConversationDoc{
		Contact:              info,
		ConversationMetadata: meta,
		Messages:             turnRecords,
	}
	if err := writeJSON(filepath.Join(contactDir, ConversationFile), doc); err != nil {
		return nil, err
	}
	out.FilePath = filepath.Join(out.SafeName, ConversationFile)

	if out.HasRecent {
		recentDoc := RecentDoc{
			Format:              "recent_interactions_analysis",
			Purpose:             "Communication pattern analysis with preserved formatting",
			Contact:             info,
			InteractionAnalysis: out.Analysis,
			RecentMessages:      recentRecords,
			Metadata: RecentMeta{
				TotalMessagesAnalyzed: len(recentRecords),
				MessagesRequested:     r.recentCount,
				GeneratedAt:           r.now().Format("2006-01-02T15:04:05"),
			},
		}
		if err := writeJSON(filepath.Join(contactDir, RecentFile), recentDoc); err != nil {
			return nil, err
		}
		out.RecentPath = filepath.Join(out.SafeName, RecentFile)
	}

	out.Status = index.StatusProcessed
	return out, nil
}

// recentWindow takes the trailing count messages and applies minimal
// cleaning. Short messages survive here: an "ok" matters when the point is
// how two people actually talk.
func recentWindow(msgs []export.Message, count int) []export.Message {
	if count > 0 && len(msgs) > count {
		msgs = msgs[len(msgs)-count:]
	}
	out := make([]export.Message, 0, len(msgs))
	for _, m := range msgs {
		content := clean.Minimal(m.Content)
		if content == "" {
			continue
		}
		m.Content = content
		out = append(out, m)
	}
	return out
}
