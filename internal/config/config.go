package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesaifali/trashdoctor/pkg/models"
)

// Config is the configuration snapshot for one scan invocation. It is
// captured by the scan run at start and never mutated afterwards.
type Config struct {
	// Scan settings
	Roots                 []string `mapstructure:"roots"`
	ExcludeGlobs          []string `mapstructure:"exclude_globs"`
	MinSizeBytes          int64    `mapstructure:"min_size_bytes"`
	IncludeHidden         bool     `mapstructure:"include_hidden"`
	MaxSymlinkFollowDepth int      `mapstructure:"max_symlink_follow_depth"`
	FollowSymlinkMeta     bool     `mapstructure:"follow_symlink_meta"` // probe resolves symlink targets
	Workers               int      `mapstructure:"workers"`

	// Scoring settings
	AgeWeight        float64            `mapstructure:"age_weight"`
	IdleWeight       float64            `mapstructure:"idle_weight"`
	SizeWeight       float64            `mapstructure:"size_weight"`
	KeepThreshold    float64            `mapstructure:"keep_threshold"`
	ArchiveThreshold float64            `mapstructure:"archive_threshold"`
	SizeBuckets      models.SizeBuckets `mapstructure:"size_buckets"`

	// Execution settings
	ArchiveDir string `mapstructure:"archive_dir"`

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // json, yaml, text
	OutputFile   string `mapstructure:"output_file"`
	KeepSkips    bool   `mapstructure:"keep_skips"` // include skip records in serialized reports

	// Profile settings
	ProfilesPath string `mapstructure:"profiles_path"`
	Profile      string `mapstructure:"profile"`

	// AI advisor settings
	Advisor AdvisorConfig `mapstructure:"advisor"`
}

// AdvisorConfig holds the optional AI advisor configuration.
type AdvisorConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Model    string `mapstructure:"model"` // haiku, sonnet, opus
	APIToken string `mapstructure:"token"`
	MaxItems int    `mapstructure:"max_items"` // top candidates to explain
	Timeout  int    `mapstructure:"timeout"`   // seconds per request
}

// Load builds the configuration from defaults and environment variables.
// CLI flags are applied on top by the caller.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("exclude_globs", []string{".git", "node_modules", "vendor", ".svn", ".hg"})
	v.SetDefault("min_size_bytes", 0)
	v.SetDefault("include_hidden", false)
	v.SetDefault("max_symlink_follow_depth", 0)
	v.SetDefault("follow_symlink_meta", false)
	v.SetDefault("workers", runtime.NumCPU()*2)

	v.SetDefault("age_weight", 0.25)
	v.SetDefault("idle_weight", 0.45)
	v.SetDefault("size_weight", 0.30)
	v.SetDefault("keep_threshold", 0.30)
	v.SetDefault("archive_threshold", 0.85)

	buckets := models.DefaultSizeBuckets()
	v.SetDefault("size_buckets.tiny", buckets.Tiny)
	v.SetDefault("size_buckets.small", buckets.Small)
	v.SetDefault("size_buckets.medium", buckets.Medium)
	v.SetDefault("size_buckets.large", buckets.Large)

	v.SetDefault("archive_dir", defaultArchiveDir())
	v.SetDefault("report_format", "")
	v.SetDefault("keep_skips", true)
	v.SetDefault("profiles_path", "configs/profiles")

	v.SetDefault("advisor.enabled", false)
	v.SetDefault("advisor.model", "sonnet")
	v.SetDefault("advisor.max_items", 10)
	v.SetDefault("advisor.timeout", 30)

	v.SetEnvPrefix("TRASHDOCTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultArchiveDir places the archive under the user's home directory.
func defaultArchiveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".trashdoctor", "archive")
}

// Validate checks the configuration before a scan starts. Violations are
// fatal: a scan never runs on a contradictory snapshot.
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return &InvalidError{Field: "roots", Reason: "at least one scan root is required"}
	}
	for _, root := range c.Roots {
		info, err := os.Stat(root)
		if err != nil {
			return &InvalidError{Field: "roots", Reason: fmt.Sprintf("root %q is not accessible: %v", root, err)}
		}
		if !info.IsDir() {
			return &InvalidError{Field: "roots", Reason: fmt.Sprintf("root %q is not a directory", root)}
		}
	}

	if err := c.ValidateScoring(); err != nil {
		return err
	}

	if c.MinSizeBytes < 0 {
		return &InvalidError{Field: "min_size_bytes", Reason: "must be non-negative"}
	}
	if c.MaxSymlinkFollowDepth < 0 {
		return &InvalidError{Field: "max_symlink_follow_depth", Reason: "must be non-negative"}
	}
	if c.Workers < 0 {
		return &InvalidError{Field: "workers", Reason: "must be non-negative"}
	}

	b := c.SizeBuckets
	if b.Tiny <= 0 || b.Small <= b.Tiny || b.Medium <= b.Small || b.Large <= b.Medium {
		return &InvalidError{Field: "size_buckets", Reason: "boundaries must be strictly increasing"}
	}

	return nil
}

// ValidateScoring checks the weight and threshold portion of the
// snapshot. It is re-run after profile overrides are merged, so a profile
// cannot smuggle in a weighting the top-level configuration would reject.
func (c *Config) ValidateScoring() error {
	if c.AgeWeight < 0 || c.IdleWeight < 0 || c.SizeWeight < 0 {
		return &InvalidError{Field: "weights", Reason: "weights must be non-negative"}
	}
	if c.AgeWeight+c.IdleWeight+c.SizeWeight <= 0 {
		return &InvalidError{Field: "weights", Reason: "weight sum must be positive"}
	}

	if c.KeepThreshold < 0 || c.KeepThreshold > 1 {
		return &InvalidError{Field: "keep_threshold", Reason: "must be in [0,1]"}
	}
	if c.ArchiveThreshold < 0 || c.ArchiveThreshold > 1 {
		return &InvalidError{Field: "archive_threshold", Reason: "must be in [0,1]"}
	}
	if c.KeepThreshold >= c.ArchiveThreshold {
		return &InvalidError{Field: "thresholds", Reason: "keep_threshold must be below archive_threshold"}
	}

	return nil
}

// InvalidError is a fatal configuration error.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
