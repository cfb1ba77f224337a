package index

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conversation outcome statuses.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusExcluded  = "excluded"
)

// Conversation kinds.
const (
	KindContact = "contact"
	KindGroup   = "group"
)

// Run is one pipeline invocation.
type Run struct {
	ID              string
	StartedAt       string
	FinishedAt      string
	ExportDir       string
	OutputDir       string
	Anonymized      bool
	Processed       int
	Skipped         int
	Excluded        int
	GroupsProcessed int
}

// Conversation is one contact or group chat outcome within a run.
type Conversation struct {
	RunID        string
	Name         string
	Kind         string
	Status       string
	PersonID     int
	MessageCount int
	TurnCount    int
	OutputDir    string
	// Detail explains skips and exclusions, e.g. "below minimum message
	// count" or "no export files found".
	Detail string
}

// BeginRun inserts a new run row and returns its id.
func (d *DB) BeginRun(exportDir, outputDir string, anonymized bool) (string, error) {
	id := uuid.NewString()
	_, err := d.db.Exec(
		"INSERT INTO runs (id, started_at, export_dir, output_dir, anonymized) VALUES (?, ?, ?, ?, ?)",
		id, time.Now().UTC().Format(time.RFC3339), exportDir, outputDir, boolInt(anonymized),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FinishRun stamps the end time and final tallies on a run.
func (d *DB) FinishRun(id string, processed, skipped, excluded, groups int) error {
	_, err := d.db.Exec(
		"UPDATE runs SET finished_at = ?, processed = ?, skipped = ?, excluded = ?, groups_processed = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), processed, skipped, excluded, groups, id,
	)
	return err
}

// RecordConversation upserts one conversation outcome.
func (d *DB) RecordConversation(c Conversation) error {
	_, err := d.db.Exec(`
		INSERT INTO conversations (run_id, name, kind, status, person_id, message_count, turn_count, output_dir, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, name, kind) DO UPDATE SET
			status = excluded.status,
			person_id = excluded.person_id,
			message_count = excluded.message_count,
			turn_count = excluded.turn_count,
			output_dir = excluded.output_dir,
			detail = excluded.detail`,
		c.RunID, c.Name, c.Kind, c.Status, c.PersonID, c.MessageCount, c.TurnCount, c.OutputDir, c.Detail,
	)
	return err
}

// LatestRun returns the most recently started run, or nil when the ledger
// is empty.
func (d *DB) LatestRun() (*Run, error) {
	var r Run
	var anonymized int
	err := d.db.QueryRow(`
		SELECT id, started_at, finished_at, export_dir, output_dir, anonymized, processed, skipped, excluded, groups_processed
		FROM runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.ExportDir, &r.OutputDir, &anonymized,
		&r.Processed, &r.Skipped, &r.Excluded, &r.GroupsProcessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Anonymized = anonymized != 0
	return &r, nil
}

// Conversations lists a run's outcomes ordered by message count, busiest
// first.
func (d *DB) Conversations(runID string) ([]Conversation, error) {
	rows, err := d.db.Query(`
		SELECT run_id, name, kind, status, person_id, message_count, turn_count, output_dir, detail
		FROM conversations WHERE run_id = ?
		ORDER BY message_count DESC, name`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.RunID, &c.Name, &c.Kind, &c.Status, &c.PersonID,
			&c.MessageCount, &c.TurnCount, &c.OutputDir, &c.Detail); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RunCount returns the number of recorded runs.
func (d *DB) RunCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
