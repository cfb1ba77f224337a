// Package pipeline orchestrates a full consolidation run: merge each
// contact's export files into one timeline, group and clean it, compute
// conversation stats, anonymize, and write the per-contact and master
// artifacts.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thejackluo/life-ai/internal/privacy"
	"github.com/thejackluo/life-ai/internal/stats"
)

// Artifact filenames. Per-contact files live in the contact's folder;
// master files under LLMFolder at the output root.
const (
	ConversationFile = "conversation_llm.json"
	RecentFile       = "conversation_recent_interactions.json"
	MappingFile      = "privacy_mapping.json"
	TranscriptFile   = "messages_consolidated.txt"

	LLMFolder       = "_llm_ready"
	MasterIndexFile = "master_index.json"
	SummariesFile   = "conversation_summaries.json"

	GroupFolder      = "_group_chats"
	GroupChatFile    = "group_chat.json"
	GroupSummaryFile = "group_chats_summary.json"

	ReportFile = "run_report.json"
)

// ContactInfo is the contact block of the conversation documents. Addresses
// never appear here: they go to the privacy mapping and nowhere else.
type ContactInfo struct {
	Name         string   `json:"name"`
	PhoneNumbers []string `json:"phone_numbers"`
	Emails       []string `json:"emails,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Title        string   `json:"title,omitempty"`
}

// TurnRecord is one grouped turn as serialized into the documents.
type TurnRecord struct {
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
}

// ConversationDoc is the main LLM-ready conversation file.
type ConversationDoc struct {
	Contact              ContactInfo                `json:"contact"`
	ConversationMetadata stats.ConversationMetadata `json:"conversation_metadata"`
	Messages             []TurnRecord               `json:"messages"`
}

// RecentDoc is the recent-interactions companion file: the trailing window
// of the timeline with minimal cleaning, for communication-style analysis.
type RecentDoc struct {
	Format              string                    `json:"format"`
	Purpose             string                    `json:"purpose"`
	Contact             ContactInfo               `json:"contact"`
	InteractionAnalysis stats.InteractionAnalysis `json:"interaction_analysis"`
	RecentMessages      []TurnRecord              `json:"recent_messages"`
	Metadata            RecentMeta                `json:"metadata"`
}

// RecentMeta records how much of the timeline the recent window covered.
type RecentMeta struct {
	TotalMessagesAnalyzed int    `json:"total_messages_analyzed"`
	MessagesRequested     int    `json:"messages_requested"`
	GeneratedAt           string `json:"generated_at"`
}

// MasterIndex is the run-level index of every processed conversation.
type MasterIndex struct {
	Metadata      MasterMetadata `json:"metadata"`
	Conversations []IndexEntry   `json:"conversations"`
}

type MasterMetadata struct {
	TotalConversations         int          `json:"total_conversations"`
	GeneratedAt                string       `json:"generated_at"`
	Format                     string       `json:"format"`
	MinMessageCount            int          `json:"min_message_count"`
	PrivacyEnabled             bool         `json:"privacy_enabled"`
	IncludesRecentInteractions bool         `json:"includes_recent_interactions"`
	RecentInteractionsCount    int          `json:"recent_interactions_count"`
	OverallStats               OverallStats `json:"overall_stats"`
}

type OverallStats struct {
	TotalMessagesAllConversations  int             `json:"total_messages_all_conversations"`
	TotalSentMessages              int             `json:"total_sent_messages"`
	TotalReceivedMessages          int             `json:"total_received_messages"`
	AverageMessagesPerConversation float64         `json:"average_messages_per_conversation"`
	MostActiveContacts             []ActiveContact `json:"most_active_contacts"`
}

type ActiveContact struct {
	Name         string `json:"name"`
	MessageCount int    `json:"message_count"`
}

// IndexEntry summarizes one conversation in the master index. When privacy
// is on, every identifying field holds a placeholder.
type IndexEntry struct {
	ContactName              string         `json:"contact_name"`
	FilePath                 string         `json:"file_path"`
	RecentInteractionsFile   string         `json:"recent_interactions_file,omitempty"`
	TotalMessages            int            `json:"total_messages"`
	DateRange                string         `json:"date_range"`
	RecentInteractionSummary *RecentSummary `json:"recent_interaction_summary,omitempty"`
	PhoneNumbers             []string       `json:"phone_numbers,omitempty"`
	Emails                   []string       `json:"emails,omitempty"`
	MostActiveNumber         string         `json:"most_active_number,omitempty"`
	Organization             string         `json:"organization,omitempty"`
}

type RecentSummary struct {
	MessagesAnalyzed int     `json:"messages_analyzed"`
	ResponsePairs    int     `json:"response_pairs"`
	InteractionRatio float64 `json:"interaction_ratio"`
	TimespanHours    float64 `json:"timespan_hours"`
}

// Summaries carries per-conversation stats without the message bodies.
type Summaries struct {
	Metadata  SummariesMetadata `json:"metadata"`
	Summaries []SummaryEntry    `json:"summaries"`
}

type SummariesMetadata struct {
	TotalConversations         int    `json:"total_conversations"`
	GeneratedAt                string `json:"generated_at"`
	Format                     string `json:"format"`
	PrivacyEnabled             bool   `json:"privacy_enabled"`
	IncludesRecentInteractions bool   `json:"includes_recent_interactions"`
}

type SummaryEntry struct {
	ContactName            string                     `json:"contact_name"`
	FilePath               string                     `json:"file_path"`
	RecentInteractionsFile string                     `json:"recent_interactions_file,omitempty"`
	ConversationMetadata   stats.ConversationMetadata `json:"conversation_metadata"`
	InteractionAnalysis    stats.InteractionAnalysis  `json:"interaction_analysis"`
}

// MasterMapping is the run-level privacy mapping: global id tables plus
// every per-contact mapping, keyed by real contact name. It never leaves
// the output directory with the LLM-bound files.
type MasterMapping struct {
	Metadata MappingMetadata `json:"metadata"`
	privacy.GlobalMappings
	Mappings map[string]*privacy.Mapping `json:"mappings"`
}

type MappingMetadata struct {
	TotalConversations int    `json:"total_conversations"`
	GeneratedAt        string `json:"generated_at"`
}

// Group chat documents.
type GroupChatDoc struct {
	GroupName            string            `json:"group_name"`
	FileName             string            `json:"file_name"`
	Type                 string            `json:"type"`
	Participants         GroupParticipants `json:"participants"`
	ConversationInsights GroupInsights     `json:"conversation_insights"`
	MessageHistory       []GroupHistoryRef `json:"message_history"`
	Metadata             DocMeta           `json:"metadata"`
}

type GroupParticipants struct {
	PhoneNumbers []string       `json:"phone_numbers"`
	Count        int            `json:"count"`
	Activity     map[string]int `json:"activity"`
}

type GroupInsights struct {
	TotalMessages          int     `json:"total_messages"`
	SentMessages           int     `json:"sent_messages"`
	ReceivedMessages       int     `json:"received_messages"`
	DateRange              string  `json:"date_range"`
	ConversationSpanDays   int     `json:"conversation_span_days"`
	MessageFrequencyPerDay float64 `json:"message_frequency_per_day"`
	MostActiveParticipant  string  `json:"most_active_participant"`
}

type GroupHistoryRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Type     string `json:"type"`
}

type DocMeta struct {
	GeneratedAt string `json:"generated_at"`
	Format      string `json:"format"`
}

type GroupSummary struct {
	Metadata   GroupSummaryMeta    `json:"metadata"`
	GroupChats []GroupSummaryEntry `json:"group_chats"`
}

type GroupSummaryMeta struct {
	TotalGroupChats int    `json:"total_group_chats"`
	GeneratedAt     string `json:"generated_at"`
	Format          string `json:"format"`
}

type GroupSummaryEntry struct {
	GroupName     string   `json:"group_name"`
	FilePath      string   `json:"file_path"`
	Participants  []string `json:"participants"`
	TotalMessages int      `json:"total_messages"`
}

// writeJSON writes an artifact with stable two-space indentation. Any error
// here is an output-directory failure and aborts the run.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
