package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/thejackluo/life-ai/internal/index"
	"github.com/thejackluo/life-ai/internal/privacy"
)

// writeMasterFiles builds the _llm_ready artifacts from the processed
// contacts: the master index, the per-conversation summaries, and (when
// privacy is on) the combined mapping file.
func (r *Runner) writeMasterFiles(outcomes []*contactOutcome) error {
	var processed []*contactOutcome
	for _, o := range outcomes {
		if o.Status == index.StatusProcessed {
			processed = append(processed, o)
		}
	}
	sort.Slice(processed, func(i, j int) bool {
		return processed[i].Contact.Name < processed[j].Contact.Name
	})

	llmDir := filepath.Join(r.outputDir, LLMFolder)
	if err := os.MkdirAll(llmDir, 0755); err != nil {
		return err
	}

	generatedAt := r.now().Format("2006-01-02T15:04:05")

	master := MasterIndex{
		Metadata: MasterMetadata{
			TotalConversations:         len(processed),
			GeneratedAt:                generatedAt,
			Format:                     "llm_ready_conversations",
			MinMessageCount:            r.minCount,
			PrivacyEnabled:             r.anonymize,
			IncludesRecentInteractions: true,
			RecentInteractionsCount:    r.recentCount,
		},
	}
	summaries := Summaries{
		Metadata: SummariesMetadata{
			TotalConversations:         len(processed),
			GeneratedAt:                generatedAt,
			Format:                     "llm_conversation_summaries",
			PrivacyEnabled:             r.anonymize,
			IncludesRecentInteractions: true,
		},
	}
	mapping := MasterMapping{
		Metadata: MappingMetadata{
			TotalConversations: len(processed),
			GeneratedAt:        generatedAt,
		},
		GlobalMappings: r.reg.GlobalMappings(),
		Mappings:       make(map[string]*privacy.Mapping),
	}

	totalMessages, totalSent, totalReceived := 0, 0, 0
	var active []ActiveContact

	for _, o := range processed {
		entry := IndexEntry{
			ContactName:            o.IndexName,
			FilePath:               o.FilePath,
			RecentInteractionsFile: o.RecentPath,
			TotalMessages:          o.Metadata.TotalMessages,
			DateRange:              o.Metadata.DateRange,
			PhoneNumbers:           o.IndexPhones,
			Emails:                 o.IndexEmails,
			MostActiveNumber:       o.MostActive,
			Organization:           o.Organization,
		}
		if o.HasRecent {
			entry.RecentInteractionSummary = &RecentSummary{
				MessagesAnalyzed: o.Analysis.MessageCount,
				ResponsePairs:    o.Analysis.ResponsePairs,
				InteractionRatio: o.Analysis.InteractionRatio,
				TimespanHours:    o.Analysis.TimespanHours,
			}
		}
		master.Conversations = append(master.Conversations, entry)

		summaries.Summaries = append(summaries.Summaries, SummaryEntry{
			ContactName:            o.IndexName,
			FilePath:               o.FilePath,
			RecentInteractionsFile: o.RecentPath,
			ConversationMetadata:   o.Metadata,
			InteractionAnalysis:    o.Analysis,
		})

		if o.Mapping != nil {
			mapping.Mappings[o.Contact.Name] = o.Mapping
		}

		totalMessages += o.Metadata.TotalMessages
		totalSent += o.Metadata.SentMessages
		totalReceived += o.Metadata.ReceivedMessages
		active = append(active, ActiveContact{Name: o.IndexName, MessageCount: o.Metadata.TotalMessages})
	}

	// Busiest first; ties keep alphabetical order from the walk above.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MessageCount > active[j].MessageCount
	})
	if len(active) > 10 {
		active = active[:10]
	}

	avg := 0.0
	if len(processed) > 0 {
		avg = math.Round(float64(totalMessages)/float64(len(processed))*10) / 10
	}
	master.Metadata.OverallStats = OverallStats{
		TotalMessagesAllConversations:  totalMessages,
		TotalSentMessages:              totalSent,
		TotalReceivedMessages:          totalReceived,
		AverageMessagesPerConversation: avg,
		MostActiveContacts:             active,
	}

	if err := writeJSON(filepath.Join(llmDir, MasterIndexFile), master); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(llmDir, SummariesFile), summaries); err != nil {
		return err
	}
	if r.anonymize {
		if err := writeJSON(filepath.Join(llmDir, MappingFile), mapping); err != nil {
			return err
		}
	}
	return nil
}
