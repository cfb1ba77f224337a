package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/thejackluo/life-ai/internal/config"
	"github.com/thejackluo/life-ai/internal/contact"
	"github.com/thejackluo/life-ai/internal/export"
	"github.com/thejackluo/life-ai/internal/index"
	"github.com/thejackluo/life-ai/internal/privacy"
)

// Runner executes one consolidation run. Create with New; a Runner is
// single-use because the privacy registry accumulates across the run.
type Runner struct {
	cfg *config.Config
	db  *index.DB

	exportDir   string
	outputDir   string
	minCount    int
	recentCount int
	window      time.Duration
	anonymize   bool

	reg *privacy.Registry
	now func() time.Time
}

// New builds a Runner from config. The db may be nil to run without the
// sqlite ledger.
func New(cfg *config.Config, db *index.DB) (*Runner, error) {
	outputDir, err := cfg.OutputPath()
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:         cfg,
		db:          db,
		exportDir:   cfg.ExportDir,
		outputDir:   outputDir,
		minCount:    cfg.Pipeline.MinMessageCount,
		recentCount: cfg.Pipeline.RecentCount,
		window:      time.Duration(cfg.Pipeline.WindowMinutes) * time.Minute,
		anonymize:   cfg.Privacy.AnonymizeEnabled(),
		reg:         privacy.NewRegistry(),
		now:         time.Now,
	}, nil
}

// Report is the run summary written to the output root and returned to the
// CLI.
type Report struct {
	RunID          string          `json:"run_id,omitempty"`
	GeneratedAt    string          `json:"generated_at"`
	ExportDir      string          `json:"export_dir"`
	OutputDir      string          `json:"output_dir"`
	PrivacyEnabled bool            `json:"privacy_enabled"`
	Contacts       ReportCounts    `json:"contacts"`
	GroupChats     ReportCounts    `json:"group_chats"`
	Outcomes       []ReportOutcome `json:"outcomes"`
}

type ReportCounts struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Excluded  int `json:"excluded"`
}

func (c *ReportCounts) add(status string) {
	c.Total++
	switch status {
	case index.StatusProcessed:
		c.Processed++
	case index.StatusSkipped:
		c.Skipped++
	case index.StatusExcluded:
		c.Excluded++
	}
}

type ReportOutcome struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Messages int    `json:"messages"`
}

// Run processes every roster contact and every group chat file, then builds
// the master artifacts. Missing or malformed export data never aborts the
// run; output-directory failures do.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.exportDir == "" {
		return nil, errors.New("export directory not configured")
	}
	if info, err := os.Stat(r.exportDir); err != nil {
		return nil, fmt.Errorf("export directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("export directory %s is not a directory", r.exportDir)
	}

	contactsPath, err := r.cfg.ContactsPath()
	if err != nil {
		return nil, err
	}
	roster, err := contact.LoadRoster(contactsPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	report := &Report{
		GeneratedAt:    r.now().Format(time.RFC3339),
		ExportDir:      r.exportDir,
		OutputDir:      r.outputDir,
		PrivacyEnabled: r.anonymize,
	}

	var runID string
	if r.db != nil {
		runID, err = r.db.BeginRun(r.exportDir, r.outputDir, r.anonymize)
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		report.RunID = runID
	}

	contacts := append([]contact.Contact(nil), roster.Contacts...)
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })

	// Export files claimed by roster contacts are not group chat
	// candidates, whatever their names look like.
	claimed := make(map[string]bool)
	for _, c := range contacts {
		for _, p := range c.Phones {
			for _, name := range export.SourceCandidates(p) {
				claimed[name] = true
			}
		}
	}

	slog.Info("starting run",
		"contacts", len(contacts),
		"export_dir", r.exportDir,
		"privacy", r.anonymize)

	var outcomes []*contactOutcome
	for _, c := range contacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := r.processContact(c)
		if err != nil {
			return nil, fmt.Errorf("contact %s: %w", c.Name, err)
		}
		outcomes = append(outcomes, out)
		report.Contacts.add(out.Status)
		report.Outcomes = append(report.Outcomes, ReportOutcome{
			Name:     c.Name,
			Kind:     index.KindContact,
			Status:   out.Status,
			Detail:   out.Detail,
			Messages: out.RawCount,
		})
		slog.Debug("contact done", "name", c.Name, "status", out.Status, "messages", out.RawCount)

		if r.db != nil {
			rec := index.Conversation{
				RunID:        runID,
				Name:         c.Name,
				Kind:         index.KindContact,
				Status:       out.Status,
				MessageCount: out.RawCount,
				TurnCount:    out.TurnCount,
				Detail:       out.Detail,
			}
			if out.Status == index.StatusProcessed {
				rec.OutputDir = filepath.Join(r.outputDir, out.SafeName)
				if out.Mapping != nil {
					rec.PersonID = out.Mapping.PersonID
				}
			}
			if err := r.db.RecordConversation(rec); err != nil {
				return nil, fmt.Errorf("failed to record conversation: %w", err)
			}
		}
	}

	groups, err := r.processGroupChats(claimed)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		report.GroupChats.add(g.Status)
		report.Outcomes = append(report.Outcomes, ReportOutcome{
			Name:     g.Name,
			Kind:     index.KindGroup,
			Status:   g.Status,
			Detail:   g.Detail,
			Messages: g.MessageCount,
		})
		if r.db != nil {
			rec := index.Conversation{
				RunID:        runID,
				Name:         g.Name,
				Kind:         index.KindGroup,
				Status:       g.Status,
				MessageCount: g.MessageCount,
				Detail:       g.Detail,
			}
			if g.Status == index.StatusProcessed {
				rec.OutputDir = filepath.Join(r.outputDir, GroupFolder, g.SafeName)
			}
			if err := r.db.RecordConversation(rec); err != nil {
				return nil, fmt.Errorf("failed to record group chat: %w", err)
			}
		}
	}

	if err := r.writeMasterFiles(outcomes); err != nil {
		return nil, err
	}

	if err := writeJSON(filepath.Join(r.outputDir, ReportFile), report); err != nil {
		return nil, err
	}

	if r.db != nil {
		if err := r.db.FinishRun(runID,
			report.Contacts.Processed,
			report.Contacts.Skipped+report.GroupChats.Skipped,
			report.Contacts.Excluded+report.GroupChats.Excluded,
			report.GroupChats.Processed); err != nil {
			return nil, fmt.Errorf("failed to finish run: %w", err)
		}
	}

	slog.Info("run complete",
		"processed", report.Contacts.Processed,
		"skipped", report.Contacts.Skipped,
		"excluded", report.Contacts.Excluded,
		"group_chats", report.GroupChats.Processed)

	return report, nil
}
