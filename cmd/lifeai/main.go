package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thejackluo/life-ai/internal/config"
	"github.com/thejackluo/life-ai/internal/contact"
	"github.com/thejackluo/life-ai/internal/export"
	"github.com/thejackluo/life-ai/internal/index"
	"github.com/thejackluo/life-ai/internal/pipeline"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifeai",
		Short: "Message export consolidation and anonymization",
		Long: `LifeAI consolidates raw per-number message exports into
chronological, cleaned, anonymized conversation files ready
for LLM processing, plus master index artifacts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
			} else {
				fmt.Printf("lifeai %s (%s, %s)\n", version, commit, buildDate)
			}
		},
	})

	// init command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Initialize lifeai config and run database",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK        bool   `json:"ok"`
				Message   string `json:"message,omitempty"`
				ConfigDir string `json:"config_dir,omitempty"`
				DataDir   string `json:"data_dir,omitempty"`
				DBPath    string `json:"db_path,omitempty"`
			}

			result := Result{OK: true}

			configDir, err := config.GetConfigDir()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to get config directory: %v", err)})
			}
			result.ConfigDir = configDir

			dataDir, err := config.GetDataDir()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to get data directory: %v", err)})
			}
			result.DataDir = dataDir

			if err := os.MkdirAll(configDir, 0755); err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to create config directory: %v", err)})
			}
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to create data directory: %v", err)})
			}

			db, err := index.Open()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to initialize database: %v", err)})
			}
			db.Close()

			dbPath, err := index.GetPath()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to get database path: %v", err)})
			}
			result.DBPath = dbPath
			result.Message = "LifeAI initialized successfully"

			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("✓ Config directory: %s\n", result.ConfigDir)
				fmt.Printf("✓ Data directory: %s\n", result.DataDir)
				fmt.Printf("✓ Database: %s\n", result.DBPath)
				fmt.Println("\nLifeAI initialized successfully!")
			}
		},
	})

	// process command
	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Consolidate and anonymize message exports",
		Long: `Run the full pipeline: merge each contact's export files into one
chronological timeline, group and clean the messages, compute
conversation stats, anonymize sensitive data, and write per-contact
and master index files.`,
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK      bool             `json:"ok"`
				Message string           `json:"message,omitempty"`
				Report  *pipeline.Report `json:"report,omitempty"`
			}

			cfg, err := config.Load()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to load config: %v", err)})
			}

			if v, _ := cmd.Flags().GetString("export-dir"); v != "" {
				cfg.ExportDir = v
			}
			if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
				cfg.OutputDir = v
			}
			if v, _ := cmd.Flags().GetString("contacts"); v != "" {
				cfg.ContactsFile = v
			}
			if cmd.Flags().Changed("min-messages") {
				v, _ := cmd.Flags().GetInt("min-messages")
				cfg.Pipeline.MinMessageCount = v
			}
			if cmd.Flags().Changed("recent") {
				v, _ := cmd.Flags().GetInt("recent")
				cfg.Pipeline.RecentCount = v
			}
			if noPrivacy, _ := cmd.Flags().GetBool("no-privacy"); noPrivacy {
				off := false
				cfg.Privacy.Anonymize = &off
			}

			var db *index.DB
			if noDB, _ := cmd.Flags().GetBool("no-db"); !noDB {
				db, err = index.Open()
				if err != nil {
					fail(Result{OK: false, Message: fmt.Sprintf("Failed to open database: %v", err)})
				}
				defer db.Close()
			}

			runner, err := pipeline.New(cfg, db)
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to configure run: %v", err)})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runner.Run(ctx)
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Run failed: %v", err)})
			}

			result := Result{OK: true, Report: report}
			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Println("Run complete:")
				fmt.Printf("  Contacts processed: %d\n", report.Contacts.Processed)
				fmt.Printf("  Contacts excluded:  %d\n", report.Contacts.Excluded)
				fmt.Printf("  Contacts skipped:   %d\n", report.Contacts.Skipped)
				fmt.Printf("  Group chats:        %d\n", report.GroupChats.Processed)
				fmt.Printf("  Output: %s\n", report.OutputDir)
				if report.PrivacyEnabled {
					fmt.Println("  Privacy: enabled")
				} else {
					fmt.Println("  Privacy: DISABLED")
				}
			}
		},
	}
	processCmd.Flags().String("export-dir", "", "Directory of raw message export files")
	processCmd.Flags().String("output-dir", "", "Output directory (default: data dir)")
	processCmd.Flags().String("contacts", "", "Contact roster YAML file")
	processCmd.Flags().Int("min-messages", 0, "Minimum message count per contact (-1 disables)")
	processCmd.Flags().Int("recent", 0, "Number of recent messages to analyze")
	processCmd.Flags().Bool("no-privacy", false, "Disable anonymization of output")
	processCmd.Flags().Bool("no-db", false, "Skip recording the run in the database")
	rootCmd.AddCommand(processCmd)

	// contacts command
	contactsCmd := &cobra.Command{
		Use:   "contacts",
		Short: "List roster contacts and their export coverage",
		Run: func(cmd *cobra.Command, args []string) {
			type ContactInfo struct {
				Name        string `json:"name"`
				Phones      int    `json:"phones"`
				RawMessages int    `json:"raw_messages"`
			}
			type Result struct {
				OK       bool          `json:"ok"`
				Message  string        `json:"message,omitempty"`
				Contacts []ContactInfo `json:"contacts,omitempty"`
			}

			cfg, err := config.Load()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to load config: %v", err)})
			}
			if v, _ := cmd.Flags().GetString("export-dir"); v != "" {
				cfg.ExportDir = v
			}
			if v, _ := cmd.Flags().GetString("contacts"); v != "" {
				cfg.ContactsFile = v
			}

			contactsPath, err := cfg.ContactsPath()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to resolve roster path: %v", err)})
			}
			roster, err := contact.LoadRoster(contactsPath)
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to load roster: %v", err)})
			}

			result := Result{OK: true}
			for _, c := range roster.Contacts {
				info := ContactInfo{Name: c.Name, Phones: len(c.Phones)}
				if cfg.ExportDir != "" {
					info.RawMessages = export.CountSourceMessages(cfg.ExportDir, c.Phones)
				}
				result.Contacts = append(result.Contacts, info)
			}

			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("%d contacts in roster:\n", len(result.Contacts))
				for _, c := range result.Contacts {
					if cfg.ExportDir != "" {
						fmt.Printf("  %-30s %d phones, %d messages\n", c.Name, c.Phones, c.RawMessages)
					} else {
						fmt.Printf("  %-30s %d phones\n", c.Name, c.Phones)
					}
				}
			}
		},
	}
	contactsCmd.Flags().String("export-dir", "", "Directory of raw message export files")
	contactsCmd.Flags().String("contacts", "", "Contact roster YAML file")
	rootCmd.AddCommand(contactsCmd)

	// index command
	rootCmd.AddCommand(&cobra.Command{
		Use:     "index",
		Aliases: []string{"runs"},
		Short:   "Show the latest recorded run",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK            bool                 `json:"ok"`
				Message       string               `json:"message,omitempty"`
				Run           *index.Run           `json:"run,omitempty"`
				Conversations []index.Conversation `json:"conversations,omitempty"`
			}

			db, err := index.Open()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to open database: %v", err)})
			}
			defer db.Close()

			run, err := db.LatestRun()
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to query runs: %v", err)})
			}
			if run == nil {
				result := Result{OK: true, Message: "No runs recorded yet"}
				if jsonOutput {
					printJSON(result)
				} else {
					fmt.Println(result.Message)
				}
				return
			}

			convos, err := db.Conversations(run.ID)
			if err != nil {
				fail(Result{OK: false, Message: fmt.Sprintf("Failed to query conversations: %v", err)})
			}

			result := Result{OK: true, Run: run, Conversations: convos}
			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("Run %s\n", run.ID)
				fmt.Printf("  Started:   %s\n", run.StartedAt)
				fmt.Printf("  Finished:  %s\n", run.FinishedAt)
				fmt.Printf("  Processed: %d  Skipped: %d  Excluded: %d  Groups: %d\n",
					run.Processed, run.Skipped, run.Excluded, run.GroupsProcessed)
				for _, c := range convos {
					fmt.Printf("  %-10s %-30s %d messages", c.Status, c.Name, c.MessageCount)
					if c.Detail != "" {
						fmt.Printf(" (%s)", c.Detail)
					}
					fmt.Println()
				}
			}
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// fail prints an error result and exits. The result must carry its message
// in a `message` field for JSON mode.
func fail(result interface{}) {
	if jsonOutput {
		printJSON(result)
	} else {
		data, _ := json.Marshal(result)
		var m struct {
			Message string `json:"message"`
		}
		json.Unmarshal(data, &m)
		fmt.Fprintf(os.Stderr, "Error: %s\n", m.Message)
	}
	os.Exit(1)
}
