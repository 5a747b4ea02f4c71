package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesaifali/trashdoctor/internal/advisor"
	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/internal/core"
	"github.com/mesaifali/trashdoctor/internal/profiles"
	"github.com/mesaifali/trashdoctor/internal/report"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	version = "0.0.1"
	logger  *zap.Logger
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trashdoctor",
		Short: "Trashdoctor - Disk Cleanup Candidate Finder",
		Long: `Scans directories for files that are probably safe to archive or delete,
ranks them by a score built from age, idle time and size, and executes
only what you explicitly confirm.`,
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(profilesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogger builds the logger based on the verbose flag.
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		// Silent logger - only errors
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	return err
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		exclude       []string
		minSize       string
		includeHidden bool
		workers       int
		symlinkDepth  int
		followMeta    bool
		profile       string
		profilesPath  string
		reportFormat  string
		outputFile    string
		archiveDir    string
		noSkips       bool
		interactive   bool
		topN          int
		// Advisor flags
		advisorEnabled bool
		advisorModel   string
		advisorToken   string
	)

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Scan directories for cleanup candidates",
		Long:  `Recursively scan one or more directories, score every file and suggest what to keep, archive or delete.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(reportFormat, advisorModel); err != nil {
				fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
				return err
			}

			if err := initLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				return err
			}
			defer logger.Sync()

			cfg, err := config.Load()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			// Override config with CLI flags
			cfg.Roots = args
			if len(exclude) > 0 {
				cfg.ExcludeGlobs = exclude
			}
			if minSize != "" {
				bytes, err := humanize.ParseBytes(minSize)
				if err != nil {
					return fmt.Errorf("--min-size: %w", err)
				}
				cfg.MinSizeBytes = int64(bytes)
			}
			if includeHidden {
				cfg.IncludeHidden = true
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("max-symlink-depth") {
				cfg.MaxSymlinkFollowDepth = symlinkDepth
			}
			if followMeta {
				cfg.FollowSymlinkMeta = true
			}
			if profile != "" {
				cfg.Profile = profile
			}
			if profilesPath != "" {
				cfg.ProfilesPath = profilesPath
			}
			if reportFormat != "" {
				cfg.ReportFormat = reportFormat
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			if archiveDir != "" {
				cfg.ArchiveDir = archiveDir
			}
			if noSkips {
				cfg.KeepSkips = false
			}
			if advisorEnabled {
				cfg.Advisor.Enabled = true
			}
			if advisorModel != "" {
				cfg.Advisor.Model = advisorModel
			}
			if advisorToken != "" {
				cfg.Advisor.APIToken = advisorToken
			}

			engine, err := core.NewEngine(cfg, logger)
			if err != nil {
				logger.Error("Engine initialization failed", zap.Error(err))
				return err
			}

			// Ctrl-C cancels the scan and keeps partial results.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("\n  %sScanning %s …%s\n", colorGray, strings.Join(args, ", "), colorReset)
			run, err := engine.Scan(ctx)
			if err != nil && run == nil {
				logger.Error("Scan failed", zap.Error(err))
				return err
			}
			if err != nil {
				fmt.Printf("  %s⚠ Scan incomplete: %v%s\n", colorYellow, err, colorReset)
			}

			notes := runAdvisor(ctx, cfg, run, topN)

			generator := report.NewGenerator(cfg, logger)
			reportPath, err := generator.Generate(run.Report(), notes)
			if err != nil {
				logger.Error("Failed to generate report", zap.Error(err))
				return err
			}
			if reportPath != "" {
				fmt.Printf("  %sReport:%s %s%s%s\n\n", colorGray, colorReset, colorCyan, reportPath, colorReset)
			}

			if interactive {
				return reviewCandidates(ctx, run, topN)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directory or glob patterns to exclude (comma-separated)")
	cmd.Flags().StringVar(&minSize, "min-size", "", "Ignore files smaller than this (e.g. 10MB)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Include hidden files and directories")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker goroutines (default: CPU cores * 2)")
	cmd.Flags().IntVar(&symlinkDepth, "max-symlink-depth", 0, "How many nested symlinked directories to follow (default: none)")
	cmd.Flags().BoolVar(&followMeta, "follow-symlink-meta", false, "Take metadata from symlink targets instead of the links")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Cleanup profile to apply (see 'trashdoctor profiles')")
	cmd.Flags().StringVar(&profilesPath, "profiles-path", "", "Directory with user profile YAML files")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: text, json, yaml (default: console output)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&archiveDir, "archive-dir", "", "Where archived files go (default: ~/.trashdoctor/archive)")
	cmd.Flags().BoolVar(&noSkips, "no-skips", false, "Leave skip records out of serialized reports")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Review candidates one by one and execute confirmed actions")
	cmd.Flags().IntVar(&topN, "top", 20, "How many top candidates to review or explain")

	cmd.Flags().BoolVar(&advisorEnabled, "advisor", false, "Explain top candidates with the Anthropic API")
	cmd.Flags().StringVar(&advisorModel, "advisor-model", "", "Advisor model: haiku, sonnet, opus (default: sonnet)")
	cmd.Flags().StringVar(&advisorToken, "advisor-token", "", "Anthropic API token (or set ANTHROPIC_API_KEY)")

	return cmd
}

// runAdvisor annotates the top candidates when enabled. Advisor failure
// never fails the scan.
func runAdvisor(ctx context.Context, cfg *config.Config, run *core.ScanRun, topN int) *advisor.Report {
	if !cfg.Advisor.Enabled {
		return nil
	}

	a, err := advisor.New(&cfg.Advisor, logger)
	if err != nil {
		fmt.Printf("  %s⚠ Advisor unavailable: %v%s\n", colorYellow, err, colorReset)
		return nil
	}

	candidates := actionable(run, topN)
	notes, err := a.Explain(ctx, candidates)
	if err != nil {
		fmt.Printf("  %s⚠ Advisor failed: %v%s\n", colorYellow, err, colorReset)
		logger.Debug("Advisor request failed", zap.Error(err))
		return nil
	}
	return notes
}

// actionable returns the top candidates that have an executable suggestion.
func actionable(run *core.ScanRun, limit int) []*models.Candidate {
	var out []*models.Candidate
	for _, c := range run.Report().Candidates {
		if c.Suggestion == models.SuggestKeep {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

// reviewCandidates walks the top candidates interactively. Only approved
// entries are executed.
func reviewCandidates(ctx context.Context, run *core.ScanRun, topN int) error {
	candidates := actionable(run, topN)
	if len(candidates) == 0 {
		fmt.Printf("  %s✓ Nothing to review%s\n\n", colorGreen, colorReset)
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	var approved []*models.Candidate

	fmt.Printf("\n  %s%sReviewing %d candidates%s\n\n", colorBold, colorCyan, len(candidates), colorReset)
	for i, c := range candidates {
		fmt.Printf("  %s[%d/%d]%s %s%s%s\n", colorGray, i+1, len(candidates), colorReset, colorBold, c.Entry.Path, colorReset)
		fmt.Printf("        %s%s, %s, %d days old, idle %d days, score %.2f%s\n",
			colorGray, strings.ToUpper(string(c.Suggestion)), humanize.IBytes(uint64(c.Entry.Size)),
			c.Signal.AgeDays, c.Signal.IdleDays, c.Score, colorReset)
		fmt.Printf("  %sApprove, reject or skip? [a/r/s/q]:%s ", colorBold, colorReset)

		input, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		switch strings.TrimSpace(strings.ToLower(input)) {
		case "a", "approve", "y", "yes":
			if err := run.Confirm(c.ID); err != nil {
				fmt.Printf("  %s⚠ %v%s\n", colorYellow, err, colorReset)
				continue
			}
			approved = append(approved, c)
		case "r", "reject", "n", "no":
			if err := run.Reject(c.ID); err != nil {
				fmt.Printf("  %s⚠ %v%s\n", colorYellow, err, colorReset)
			}
		case "q", "quit":
			return executeApproved(ctx, run, approved)
		}
	}

	return executeApproved(ctx, run, approved)
}

// executeApproved runs the confirmed actions and prints each outcome.
func executeApproved(ctx context.Context, run *core.ScanRun, approved []*models.Candidate) error {
	if len(approved) == 0 {
		fmt.Printf("\n  %sNothing approved, nothing executed%s\n\n", colorGray, colorReset)
		return nil
	}

	fmt.Printf("\n  %sExecuting %d approved actions…%s\n", colorGray, len(approved), colorReset)
	failed := 0
	var reclaimed uint64
	for _, c := range approved {
		if err := run.Execute(ctx, c.ID); err != nil {
			failed++
			fmt.Printf("  %s✗ %s: %v%s\n", colorRed, c.Entry.Path, err, colorReset)
			continue
		}
		reclaimed += uint64(c.Entry.Size)
		switch c.Suggestion {
		case models.SuggestArchive:
			fmt.Printf("  %s✓ archived%s %s %s→ %s%s\n", colorGreen, colorReset, c.Entry.Path, colorGray, c.ArchivedLocation, colorReset)
		case models.SuggestDelete:
			fmt.Printf("  %s✓ deleted%s  %s\n", colorGreen, colorReset, c.Entry.Path)
		}
	}

	fmt.Printf("\n  %s%s reclaimed, %d failures%s\n\n", colorBold, humanize.IBytes(reclaimed), failed, colorReset)
	if failed > 0 {
		return fmt.Errorf("%d of %d actions failed", failed, len(approved))
	}
	return nil
}

// profilesCmd creates the profiles command
func profilesCmd() *cobra.Command {
	var profilesPath string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available cleanup profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := profiles.NewLoader(profilesPath).Load()
			if err != nil {
				return err
			}

			fmt.Println()
			for _, name := range registry.Names() {
				p, err := registry.Get(name)
				if err != nil {
					return err
				}
				fmt.Printf("  %s%-18s%s %s\n", colorBold, p.Name, colorReset, p.Description)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&profilesPath, "profiles-path", "", "Directory with user profile YAML files")
	return cmd
}

// validateFlags validates CLI flag values
func validateFlags(reportFormat, advisorModel string) error {
	if reportFormat != "" {
		validFormats := []string{"text", "txt", "json", "yaml", "yml"}
		if !contains(validFormats, reportFormat) {
			return fmt.Errorf("--report must be one of: %s (got: %s)", strings.Join(validFormats, ", "), reportFormat)
		}
	}

	if advisorModel != "" {
		validModels := []string{"haiku", "sonnet", "opus"}
		if !contains(validModels, advisorModel) {
			return fmt.Errorf("--advisor-model must be one of: %s (got: %s)", strings.Join(validModels, ", "), advisorModel)
		}
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
