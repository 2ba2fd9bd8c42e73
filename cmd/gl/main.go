package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gradeline/internal/config"
	"gradeline/internal/db"
	"gradeline/internal/deadline"
	"gradeline/internal/domain"
	"gradeline/internal/engine"
	"gradeline/internal/events"
	"gradeline/internal/execx"
	"gradeline/internal/ledger"
	"gradeline/internal/migrate"
	"gradeline/internal/repo"
	"gradeline/internal/suite"
	"gradeline/internal/vcs"
)

var rootCmd = &cobra.Command{
	Use:   "gl",
	Short: "Gradeline CLI",
	Long: `Gradeline grades a single student's change set against course deadlines.
One run: list the changed paths, check the submission rules, run the matching
check suite, apply the late policy, print the report, and append the result
to the gradebook ledger.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var exitErr *engine.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("GRADELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// CI conventions: honor the unprefixed variables the automation sets.
	_ = viper.BindEnv("base-ref", "GRADELINE_BASE_REF", "BASE_REF")
	_ = viper.BindEnv("event-path", "GRADELINE_EVENT_PATH", "GITHUB_EVENT_PATH")
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "repository checkout root")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("ledger", filepath.Join("autograder", "gradebook.csv"), "gradebook path relative to workspace")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("ledger", rootCmd.PersistentFlags().Lookup("ledger"))
}

func registerCommands() {
	rootCmd.AddCommand(gradeCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(deadlinesCmd())
	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(logCmd())
}

func gradeCmd() *cobra.Command {
	var baseRef, eventPath, suiteCmd string
	var timeoutSeconds int
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade the current change set",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("base-ref") {
				if v := viper.GetString("base-ref"); v != "" {
					baseRef = v
				}
			}
			if !cmd.Flags().Changed("event-path") {
				eventPath = viper.GetString("event-path")
			}

			runner := execx.ExecRunner{}
			eng := engine.Engine{
				Config:    cfg,
				Clock:     deadline.Clock{Location: loc},
				Git:       vcs.Git{Runner: runner, Dir: workspace},
				Suite:     suite.Suite{Runner: runner, Dir: workspace, Command: strings.Fields(suiteCmd)},
				Ledger:    ledger.Ledger{Path: filepath.Join(workspace, viper.GetString("ledger"))},
				RepoDir:   workspace,
				EventPath: eventPath,
				Out:       cmd.OutOrStdout(),
			}
			if writer := openRunLog(cmd.Context(), workspace, cmd); writer != nil {
				eng.Events = writer
				defer writer.DB.Close()
			}

			report, err := eng.Grade(cmd.Context(), engine.Options{BaseRef: baseRef, TimeoutSeconds: timeoutSeconds})
			if err != nil {
				return err
			}
			if viper.GetBool("json") && report.StudentID != "" {
				return printJSON(report)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseRef, "base-ref", "main", "base revision to diff against")
	cmd.Flags().StringVar(&eventPath, "event-path", "", "path to event metadata JSON")
	cmd.Flags().StringVar(&suiteCmd, "suite-cmd", "pytest -q", "check-suite command")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 5, "per-check time budget in seconds")
	return cmd
}

// openRunLog opens the sqlite audit log; a broken run log warns and is
// skipped rather than blocking grading.
func openRunLog(_ context.Context, workspace string, cmd *cobra.Command) *events.Writer {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: run log unavailable: %v\n", err)
		return nil
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: run log unavailable: %v\n", err)
		return nil
	}
	return &events.Writer{DB: conn}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect course config",
		Long:  "Config is the rulebook (course.yml): identity rules, submission zones, deadlines, and the late policy constants.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrIndent(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate course config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func deadlinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List graded units and deadlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			names := cfg.UnitNames()
			sort.Strings(names)
			if viper.GetBool("json") {
				units := make([]domain.Unit, 0, len(names))
				for _, name := range names {
					u := cfg.Units[name]
					units = append(units, domain.Unit{Name: name, Deadline: u.Deadline, Suite: u.Suite, MaxPoints: cfg.Policy.UnitMaxPoints})
				}
				return printJSON(units)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Unit", "Deadline", "Suite", "Max"})
			for _, name := range names {
				u := cfg.Units[name]
				tw.AppendRow(table.Row{name, u.Deadline + " " + cfg.Course.Timezone, u.Suite, cfg.Policy.UnitMaxPoints})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func ledgerCmd() *cobra.Command {
	l := &cobra.Command{
		Use:   "ledger",
		Short: "Gradebook ledger",
	}
	l.AddCommand(ledgerTailCmd())
	return l
}

func ledgerTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent gradebook rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			l := ledger.Ledger{Path: filepath.Join(workspace, viper.GetString("ledger"))}
			entries, err := l.Tail(n)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(entries)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Student", "Unit", "Final", "Max", "Submitted"})
			for _, e := range entries {
				tw.AppendRow(table.Row{e.StudentID, e.Unit, e.FinalScore, e.MaxPoints, e.SubmittedAt})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of rows")
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Run audit log",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var studentID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			runs, err := repo.Repo{DB: conn}.LatestRuns(cmd.Context(), n, studentID)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(runs)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"TS", "Run", "Student", "Verdict"})
			for _, r := range runs {
				tw.AppendRow(table.Row{r.TS, r.ID, r.StudentID, r.Verdict})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of runs")
	cmd.Flags().StringVar(&studentID, "student", "", "filter by participant id")
	return cmd
}

// --- helpers ---

func printJSONOrIndent(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
