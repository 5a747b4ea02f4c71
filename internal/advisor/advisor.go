// Package advisor adds optional plain-language explanations to the top
// cleanup candidates using the Anthropic API. It is off by default and the
// scan result never depends on it; failures degrade to a report without
// explanations.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mesaifali/trashdoctor/internal/config"
	"github.com/mesaifali/trashdoctor/pkg/models"
)

const systemPrompt = `You are a disk cleanup assistant. For each file you are
given its path, size, age in days, days since last access and the suggested
action. In one short sentence per file, explain to a non-technical user why
the file is probably safe to archive or delete, or what would argue against
it. Answer with one line per file, prefixed by the file's number.`

// Note is one explanation attached to a candidate.
type Note struct {
	CandidateID string `json:"candidate_id" yaml:"candidate_id"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Report holds the advisor output for one scan.
type Report struct {
	Model      string `json:"model" yaml:"model"`
	Notes      []Note `json:"notes" yaml:"notes"`
	TokensUsed int64  `json:"tokens_used" yaml:"tokens_used"`
}

// Advisor wraps the Anthropic client.
type Advisor struct {
	client   anthropic.Client
	model    string
	maxItems int
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates an advisor from configuration. The API token comes from the
// config or the ANTHROPIC_API_KEY environment variable.
func New(cfg *config.AdvisorConfig, logger *zap.Logger) (*Advisor, error) {
	token := cfg.APIToken
	if token == "" {
		token = os.Getenv("ANTHROPIC_API_KEY")
	}
	if token == "" {
		return nil, errors.New("no API token provided: set advisor.token or ANTHROPIC_API_KEY")
	}

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 10
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Advisor{
		client:   anthropic.NewClient(option.WithAPIKey(token)),
		model:    mapModelName(cfg.Model),
		maxItems: maxItems,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// mapModelName converts friendly model names to model IDs.
func mapModelName(name string) string {
	switch strings.ToLower(name) {
	case "haiku":
		return "claude-3-5-haiku-latest"
	case "sonnet":
		return "claude-sonnet-4-20250514"
	case "opus":
		return "claude-opus-4-20250514"
	default:
		return "claude-sonnet-4-20250514"
	}
}

// Explain asks the model to annotate the given candidates, highest
// priority first. Only the first maxItems candidates are sent.
func (a *Advisor) Explain(ctx context.Context, candidates []*models.Candidate) (*Report, error) {
	if len(candidates) > a.maxItems {
		candidates = candidates[:a.maxItems]
	}
	if len(candidates) == 0 {
		return &Report{Model: a.model}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.logger.Info("Requesting advisor explanations",
		zap.String("model", a.model),
		zap.Int("candidates", len(candidates)))

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(candidates))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("advisor request failed: %w", err)
	}

	report := &Report{
		Model:      a.model,
		Notes:      parseNotes(extractText(message), candidates),
		TokensUsed: message.Usage.InputTokens + message.Usage.OutputTokens,
	}
	return report, nil
}

// buildPrompt lays out one numbered line per candidate.
func buildPrompt(candidates []*models.Candidate) string {
	var sb strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s | size %s | %d days old | idle %d days | suggested: %s\n",
			i+1,
			c.Entry.Path,
			humanize.IBytes(uint64(c.Entry.Size)),
			c.Signal.AgeDays,
			c.Signal.IdleDays,
			c.Suggestion)
	}
	return sb.String()
}

// extractText concatenates the text blocks of a response.
func extractText(message *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

// parseNotes matches numbered response lines back to candidates. Lines
// that do not start with a known number are dropped.
func parseNotes(text string, candidates []*models.Candidate) []Note {
	var notes []Note
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		num, rest, ok := splitNumbered(line)
		if !ok || num < 1 || num > len(candidates) {
			continue
		}
		notes = append(notes, Note{
			CandidateID: candidates[num-1].ID,
			Explanation: rest,
		})
	}
	return notes
}

// splitNumbered parses lines of the form "3. explanation" or "3: explanation".
func splitNumbered(line string) (int, string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return 0, "", false
	}
	if line[i] != '.' && line[i] != ':' && line[i] != ')' {
		return 0, "", false
	}

	num := 0
	for _, ch := range line[:i] {
		num = num*10 + int(ch-'0')
	}
	return num, strings.TrimSpace(line[i+1:]), true
}
