package report

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesaifali/trashdoctor/internal/advisor"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

// generateYAML writes the report as YAML.
func (g *Generator) generateYAML(report *models.ScanReport, notes *advisor.Report, outputFile string) error {
	data, err := yaml.Marshal(g.serializable(report, notes))
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}
