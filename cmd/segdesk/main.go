package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"segdesk/internal/bootstrap"
	workflowdto "segdesk/internal/modules/workflow/dto"
	"segdesk/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	stateDir   string
	configPath string
	overrides  config.Overrides
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "segdesk",
		Short:         "Terminal workbench for reviewing audio transcription segments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.stateDir, "state-dir", "", "state directory (default: user config dir/segdesk)")
	pf.StringVar(&flags.configPath, "config", "", "config file (default: <state-dir>/segdesk.yaml)")
	pf.StringVar(&flags.overrides.BaseURL, "base-url", "", "backend base url")
	pf.StringVar(&flags.overrides.UserID, "user", "", "reviewer id whose queue is worked on")
	pf.StringVar(&flags.overrides.Token, "token", "", "bearer token (or "+config.TokenEnv+")")
	pf.StringVar(&flags.overrides.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.IntVar(&flags.overrides.WindowSize, "window", 0, "number of queue entries shown at once")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newQueueCmd(flags))
	root.AddCommand(newSegmentCmd(flags))
	root.AddCommand(newFinishCmd(flags))
	root.AddCommand(newAnchorCmd(flags))
	root.AddCommand(newJournalCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	stateDir := flags.stateDir
	if stateDir == "" {
		dir, err := config.DefaultStateDir()
		if err != nil {
			return config.Config{}, err
		}
		stateDir = dir
	}
	cfg, err := config.Load(stateDir, flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Apply(flags.overrides)
	return cfg, nil
}

func loadApp(flags *rootFlags, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, opts)
}

// withApp builds the app for one command and closes it afterwards.
func withApp(flags *rootFlags, requireUser bool, run func(app *bootstrap.App) error) error {
	app, err := loadApp(flags, bootstrap.Options{RequireUser: requireUser})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return run(app)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the segment editor",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg, bootstrap.Options{LogOutput: cfg.LogPath(), RequireUser: true})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
}

func newQueueCmd(flags *rootFlags) *cobra.Command {
	queue := &cobra.Command{Use: "queue", Short: "Segment queue commands"}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the reviewer's segments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, true, func(app *bootstrap.App) error {
				ws, err := app.WorkflowCLI.Queue(context.Background())
				if err != nil {
					return err
				}
				if ws.Empty {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no segments assigned")
					return nil
				}
				printQueue(cmd, ws, all)
				return nil
			})
		},
	}
	list.Flags().BoolVar(&all, "all", false, "list the whole queue instead of the window")
	queue.AddCommand(list)
	return queue
}

func newSegmentCmd(flags *rootFlags) *cobra.Command {
	segment := &cobra.Command{Use: "segment", Short: "Work on a single segment"}

	segment.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Show a segment, the resumed one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segmentID, err := optionalID(args)
			if err != nil {
				return err
			}
			return withApp(flags, true, func(app *bootstrap.App) error {
				ws, err := app.WorkflowCLI.Show(context.Background(), segmentID)
				if err != nil {
					return err
				}
				printSegment(cmd, ws)
				return nil
			})
		},
	})

	segment.AddCommand(&cobra.Command{
		Use:   "start <id>",
		Short: "Mark a ready segment in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segmentID, err := optionalID(args)
			if err != nil {
				return err
			}
			return withApp(flags, true, func(app *bootstrap.App) error {
				if err := app.WorkflowCLI.Start(context.Background(), segmentID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "segment %d started\n", segmentID)
				return nil
			})
		},
	})

	var text, emotion string
	commit := &cobra.Command{
		Use:   "commit [id] --text <transcription>",
		Short: "Save a transcription and move to the next segment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("--text is required")
			}
			segmentID, err := optionalID(args)
			if err != nil {
				return err
			}
			return withApp(flags, true, func(app *bootstrap.App) error {
				ws, err := app.WorkflowCLI.Commit(context.Background(), segmentID, text, emotion)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "saved")
				printNext(cmd, ws)
				return nil
			})
		},
	}
	commit.Flags().StringVar(&text, "text", "", "transcription text")
	commit.Flags().StringVar(&emotion, "emotion", "", "emotion label")

	var reportText string
	report := &cobra.Command{
		Use:   "report [id] --text <reason>",
		Short: "Report a segment as untranscribable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(reportText) == "" {
				return fmt.Errorf("--text is required")
			}
			segmentID, err := optionalID(args)
			if err != nil {
				return err
			}
			return withApp(flags, true, func(app *bootstrap.App) error {
				ws, err := app.WorkflowCLI.Report(context.Background(), segmentID, reportText)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reported")
				printNext(cmd, ws)
				return nil
			})
		},
	}
	report.Flags().StringVar(&reportText, "text", "", "report text")

	segment.AddCommand(commit, report)
	return segment
}

func newFinishCmd(flags *rootFlags) *cobra.Command {
	var text, emotion string
	finish := &cobra.Command{
		Use:   "finish",
		Short: "Close the batch from the last segment and load the next one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, true, func(app *bootstrap.App) error {
				ws, err := app.WorkflowCLI.Finish(context.Background(), text, emotion)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "batch finished")
				if ws.QueueError != "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "next queue unavailable: "+ws.QueueError)
					return nil
				}
				printNext(cmd, ws)
				return nil
			})
		},
	}
	finish.Flags().StringVar(&text, "text", "", "transcription for the last segment")
	finish.Flags().StringVar(&emotion, "emotion", "", "emotion label for the last segment")
	return finish
}

func newAnchorCmd(flags *rootFlags) *cobra.Command {
	anchor := &cobra.Command{Use: "anchor", Short: "Inspect the resume anchor"}
	anchor.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the remembered segment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(app *bootstrap.App) error {
				out := app.WorkflowCLI.Anchor(context.Background())
				if !out.Set {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no anchor")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "segment %d\n", out.SegmentID)
				return nil
			})
		},
	})
	anchor.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the remembered segment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(app *bootstrap.App) error {
				app.WorkflowCLI.ClearAnchor(context.Background())
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "anchor cleared")
				return nil
			})
		},
	})
	return anchor
}

func newJournalCmd(flags *rootFlags) *cobra.Command {
	journal := &cobra.Command{Use: "journal", Short: "Finished batch history"}

	var limit int
	var everyone bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List finished batches, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(app *bootstrap.App) error {
				userID := app.UserID
				if everyone {
					userID = ""
				}
				batches, err := app.JournalCLI.List(context.Background(), userID, limit)
				if err != nil {
					return err
				}
				if len(batches) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no finished batches")
					return nil
				}
				rows := make([][]string, 0, len(batches))
				for _, b := range batches {
					rows = append(rows, []string{
						shortID(b.ID),
						b.UserID,
						humanize.Time(b.FinishedAt),
						strconv.Itoa(b.DurationMin) + "m",
						strconv.Itoa(b.Done),
						strconv.Itoa(b.Invalid),
						strconv.Itoa(b.Total),
					})
				}
				writeTable(cmd.OutOrStdout(),
					[]string{"ID", "User", "Finished", "Took", "Done", "Invalid", "Total"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight})
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum batches to list (0 for all)")
	list.Flags().BoolVar(&everyone, "all-users", false, "include every reviewer's batches")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a batch note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(app *bootstrap.App) error {
				detail, err := app.JournalCLI.Show(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "path: %s\n\n%s", detail.Path, detail.Body)
				return nil
			})
		},
	}

	journal.AddCommand(list, show)
	return journal
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			raw, err := cfg.Redacted().Marshal()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n# state dir: %s\n%s", cfg.Path, cfg.StateDir, raw)
			return nil
		},
	})
	return cfgCmd
}

// ─── output ──────────────────────────────────────────────────────────────────

func printQueue(cmd *cobra.Command, ws workflowdto.WorkspaceOutput, all bool) {
	segments := ws.Visible()
	if all {
		segments = ws.Segments
	}
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		marker := ""
		if seg.Current {
			marker = "▸"
		}
		created := ""
		if !seg.CreatedAt.IsZero() {
			created = humanize.Time(seg.CreatedAt)
		}
		rows = append(rows, []string{marker, strconv.Itoa(seg.Position), strconv.FormatInt(seg.ID, 10), seg.AudioName, created, seg.StatusLabel})
	}
	writeTable(cmd.OutOrStdout(),
		[]string{"", "#", "ID", "Audio", "Created", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight})
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d\n", ws.UserID, ws.Position, len(ws.Segments))
}

func printSegment(cmd *cobra.Command, ws workflowdto.WorkspaceOutput) {
	out := cmd.OutOrStdout()
	cur, ok := ws.Current()
	if !ok {
		_, _ = fmt.Fprintln(out, "no segment selected")
		return
	}
	_, _ = fmt.Fprintf(out, "segment:  %d (%d of %d)\n", cur.ID, cur.Position, len(ws.Segments))
	_, _ = fmt.Fprintf(out, "audio:    %s\n", cur.AudioName)
	_, _ = fmt.Fprintf(out, "file:     %s\n", cur.FilePath)
	_, _ = fmt.Fprintf(out, "status:   %s\n", cur.StatusLabel)
	if cur.TranscribeOption != "" {
		_, _ = fmt.Fprintf(out, "hint:     %s\n", cur.TranscribeOption)
	}
	if ws.DetailError != "" {
		_, _ = fmt.Fprintf(out, "detail:   %s\n", ws.DetailError)
		return
	}
	_, _ = fmt.Fprintf(out, "ai:       %s\n", ws.Detail.AIText)
	_, _ = fmt.Fprintf(out, "text:     %s\n", ws.Draft.Transcription)
	_, _ = fmt.Fprintf(out, "emotion:  %s\n", ws.Draft.Emotion)
	if ws.Draft.Report != "" {
		_, _ = fmt.Fprintf(out, "report:   %s\n", ws.Draft.Report)
	}
}

func printNext(cmd *cobra.Command, ws workflowdto.WorkspaceOutput) {
	if ws.Finished {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "end of queue reached; run `segdesk finish` to close the batch")
		return
	}
	if cur, ok := ws.Current(); ok {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "next: segment %d (%d of %d)\n", cur.ID, cur.Position, len(ws.Segments))
	}
}

func optionalID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid segment id %q", args[0])
	}
	return id, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
