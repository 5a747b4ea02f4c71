// Package report renders a scan report to the console or serializes it to
// a file in one of the supported formats.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/internal/advisor"
	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[38;5;245m"
)

// FormatDuration formats duration to a human-readable string with max 2
// decimal places.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator renders reports in the configured format.
type Generator struct {
	config *config.Config
	logger *zap.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(cfg *config.Config, logger *zap.Logger) *Generator {
	return &Generator{config: cfg, logger: logger}
}

// Generate renders the report. With no format configured it prints to the
// console and returns an empty path; otherwise it writes the configured
// output file (or a timestamped default) and returns its absolute path.
func (g *Generator) Generate(report *models.ScanReport, notes *advisor.Report) (string, error) {
	format := g.config.ReportFormat
	outputFile := g.config.OutputFile

	if format == "" {
		g.printConsole(report, notes)
		return "", nil
	}

	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		switch format {
		case "json":
			outputFile = fmt.Sprintf("TRASHDOCTOR-REPORT-%s.json", timestamp)
		case "yaml", "yml":
			outputFile = fmt.Sprintf("TRASHDOCTOR-REPORT-%s.yaml", timestamp)
		case "txt", "text":
			outputFile = fmt.Sprintf("TRASHDOCTOR-REPORT-%s.txt", timestamp)
		default:
			return "", fmt.Errorf("unknown report format: %s", format)
		}
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var err error
	switch format {
	case "json":
		err = g.generateJSON(report, notes, outputFile)
	case "yaml", "yml":
		err = g.generateYAML(report, notes, outputFile)
	case "txt", "text":
		err = g.generateText(report, notes, outputFile)
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// serializable strips skip records when the configuration says so and
// attaches the advisor notes.
type serializable struct {
	models.ScanReport `yaml:",inline"`
	Advisor           *advisor.Report `json:"advisor,omitempty" yaml:"advisor,omitempty"`
}

func (g *Generator) serializable(report *models.ScanReport, notes *advisor.Report) *serializable {
	out := *report
	if !g.config.KeepSkips {
		out.Skips = nil
	}
	return &serializable{ScanReport: out, Advisor: notes}
}

// printConsole prints a colored summary to stdout.
func (g *Generator) printConsole(report *models.ScanReport, notes *advisor.Report) {
	fmt.Println()
	header := "SCAN COMPLETE"
	if report.Cancelled {
		header = "SCAN CANCELLED (partial results)"
	} else if report.Partial {
		header = "SCAN ABORTED (partial results)"
	}
	fmt.Printf("%s%s%s%s\n\n", colorBold, colorCyan, header, colorReset)

	fmt.Printf("  %sRoots:%s     %s\n", colorGray, colorReset, strings.Join(report.Roots, ", "))
	fmt.Printf("  %sEntries:%s   %d files, %d directories (%d skipped)\n", colorGray, colorReset,
		report.Stats.EntriesVisited, report.Stats.DirsVisited, report.Stats.EntriesSkipped)
	fmt.Printf("  %sScanned:%s   %s\n", colorGray, colorReset, humanize.IBytes(uint64(report.Stats.BytesScanned)))
	fmt.Printf("  %sDuration:%s  %s\n", colorGray, colorReset, FormatDuration(report.Duration))
	fmt.Println()

	actionable := report.Stats.ArchiveCount + report.Stats.DeleteCount
	if actionable == 0 {
		fmt.Printf("  %s%s✓ Nothing to clean up%s\n\n", colorBold, colorGreen, colorReset)
		return
	}

	reclaimable := report.Stats.ArchiveBytes + report.Stats.DeleteBytes
	fmt.Printf("  %s%s%d cleanup candidates, %s reclaimable%s\n\n",
		colorBold, colorYellow, actionable, humanize.IBytes(uint64(reclaimable)), colorReset)
	fmt.Printf("  %sdelete:%s  %d (%s)\n", colorRed, colorReset,
		report.Stats.DeleteCount, humanize.IBytes(uint64(report.Stats.DeleteBytes)))
	fmt.Printf("  %sarchive:%s %d (%s)\n", colorYellow, colorReset,
		report.Stats.ArchiveCount, humanize.IBytes(uint64(report.Stats.ArchiveBytes)))
	fmt.Printf("  %skeep:%s    %d\n", colorGreen, colorReset, report.Stats.KeepCount)
	fmt.Println()

	noteByID := make(map[string]string)
	if notes != nil {
		for _, n := range notes.Notes {
			noteByID[n.CandidateID] = n.Explanation
		}
	}

	shown := 0
	for _, c := range report.Candidates {
		if c.Suggestion == models.SuggestKeep {
			continue
		}
		shown++
		if shown > 20 {
			fmt.Printf("  %s… and %d more, use a report format for the full list%s\n",
				colorDim, actionable-20, colorReset)
			break
		}
		fmt.Printf("  %s[%s]%s %s%-7s%s %8s  %s\n",
			colorDim, c.ID, colorReset,
			suggestionColor(c.Suggestion), c.Suggestion, colorReset,
			humanize.IBytes(uint64(c.Entry.Size)),
			c.Entry.Path)
		fmt.Printf("        %sscore %.2f, confidence %.2f, %d days old, idle %d days%s\n",
			colorGray, c.Score, c.Confidence, c.Signal.AgeDays, c.Signal.IdleDays, colorReset)
		if expl, ok := noteByID[c.ID]; ok {
			fmt.Printf("        %s%s%s\n", colorDim, expl, colorReset)
		}
	}
	fmt.Println()

	g.printDiskUsage(report)
}

func (g *Generator) printDiskUsage(report *models.ScanReport) {
	if len(report.Stats.DiskUsage) == 0 {
		return
	}
	for _, root := range report.Roots {
		usage, ok := report.Stats.DiskUsage[root]
		if !ok {
			continue
		}
		fmt.Printf("  %sDisk:%s %s — %s free of %s (%.1f%% used)\n",
			colorGray, colorReset, root,
			humanize.IBytes(usage.FreeBytes),
			humanize.IBytes(usage.TotalBytes),
			usage.UsedPercent)
	}
	fmt.Println()
}

func suggestionColor(s models.Suggestion) string {
	switch s {
	case models.SuggestDelete:
		return colorRed
	case models.SuggestArchive:
		return colorYellow
	default:
		return colorGreen
	}
}
