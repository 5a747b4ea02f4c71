package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mesaifali/trashdoctor/internal/advisor"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// generateText writes a plain text report.
func (g *Generator) generateText(report *models.ScanReport, notes *advisor.Report, outputFile string) error {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("  TRASHDOCTOR CLEANUP REPORT\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n\n")

	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Roots:            %s\n", strings.Join(report.Roots, ", ")))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", report.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("End Time:         %s\n", report.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(report.Duration)))
	sb.WriteString(fmt.Sprintf("Files Scanned:    %d\n", report.Stats.EntriesVisited))
	sb.WriteString(fmt.Sprintf("Directories:      %d\n", report.Stats.DirsVisited))
	sb.WriteString(fmt.Sprintf("Skipped:          %d\n", report.Stats.EntriesSkipped))
	sb.WriteString(fmt.Sprintf("Bytes Scanned:    %s\n", humanize.IBytes(uint64(report.Stats.BytesScanned))))
	if report.Cancelled {
		sb.WriteString("NOTE:             scan was cancelled, results are partial\n")
	} else if report.Partial {
		sb.WriteString("NOTE:             scan was aborted, results are partial\n")
	}
	sb.WriteString("\n")

	sb.WriteString("SUGGESTIONS\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("  DELETE : %d (%s)\n", report.Stats.DeleteCount, humanize.IBytes(uint64(report.Stats.DeleteBytes))))
	sb.WriteString(fmt.Sprintf("  ARCHIVE: %d (%s)\n", report.Stats.ArchiveCount, humanize.IBytes(uint64(report.Stats.ArchiveBytes))))
	sb.WriteString(fmt.Sprintf("  KEEP   : %d\n", report.Stats.KeepCount))
	sb.WriteString("\n")

	if len(report.Stats.ByTypeGroup) > 0 {
		sb.WriteString("BY FILE TYPE\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		groups := make([]string, 0, len(report.Stats.ByTypeGroup))
		for group := range report.Stats.ByTypeGroup {
			groups = append(groups, group)
		}
		sort.Strings(groups)
		for _, group := range groups {
			gs := report.Stats.ByTypeGroup[group]
			sb.WriteString(fmt.Sprintf("  %-12s: %5d files, %s\n", group, gs.Count, humanize.IBytes(uint64(gs.Bytes))))
		}
		sb.WriteString("\n")
	}

	noteByID := make(map[string]string)
	if notes != nil {
		for _, n := range notes.Notes {
			noteByID[n.CandidateID] = n.Explanation
		}
	}

	sb.WriteString("CANDIDATES\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	for _, c := range report.Candidates {
		if c.Suggestion == models.SuggestKeep {
			continue
		}
		sb.WriteString(fmt.Sprintf("[%s] %-7s %10s  score=%.2f conf=%.2f age=%dd idle=%dd\n",
			c.ID, strings.ToUpper(string(c.Suggestion)), humanize.IBytes(uint64(c.Entry.Size)),
			c.Score, c.Confidence, c.Signal.AgeDays, c.Signal.IdleDays))
		sb.WriteString(fmt.Sprintf("    %s\n", c.Entry.Path))
		if expl, ok := noteByID[c.ID]; ok {
			sb.WriteString(fmt.Sprintf("    advisor: %s\n", expl))
		}
	}
	sb.WriteString("\n")

	if g.config.KeepSkips && len(report.Skips) > 0 {
		sb.WriteString("SKIPPED PATHS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, rec := range report.Skips {
			detail := ""
			if rec.Detail != "" {
				detail = " (" + rec.Detail + ")"
			}
			sb.WriteString(fmt.Sprintf("  %-18s %s%s\n", rec.Reason, rec.Path, detail))
		}
		sb.WriteString("\n")
	}

	return os.WriteFile(outputFile, []byte(sb.String()), 0o644)
}
