package report

import (
	"encoding/json"
	"os"

	"github.com/mesaifali/trashdoctor/internal/advisor"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// generateJSON writes the report as indented JSON.
func (g *Generator) generateJSON(report *models.ScanReport, notes *advisor.Report, outputFile string) error {
	data, err := json.MarshalIndent(g.serializable(report, notes), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}
