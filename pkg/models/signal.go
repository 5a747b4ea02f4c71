package models

// SizeClass is a coarse bucket of file size used by the scoring model so it
// does not overreact to exact byte counts.
type SizeClass string

const (
	SizeTiny   SizeClass = "tiny"   // < 1 MiB
	SizeSmall  SizeClass = "small"  // < 100 MiB
	SizeMedium SizeClass = "medium" // < 1 GiB
	SizeLarge  SizeClass = "large"  // < 10 GiB
	SizeHuge   SizeClass = "huge"   // >= 10 GiB
)

// SizeBuckets holds the upper boundaries (exclusive) of the first four size
// classes in bytes. Anything at or above Large is Huge.
type SizeBuckets struct {
	Tiny   int64 `mapstructure:"tiny" yaml:"tiny"`
	Small  int64 `mapstructure:"small" yaml:"small"`
	Medium int64 `mapstructure:"medium" yaml:"medium"`
	Large  int64 `mapstructure:"large" yaml:"large"`
}

// DefaultSizeBuckets returns the default class boundaries.
func DefaultSizeBuckets() SizeBuckets {
	return SizeBuckets{
		Tiny:   1 << 20,       // 1 MiB
		Small:  100 << 20,     // 100 MiB
		Medium: 1 << 30,       // 1 GiB
		Large:  10 * (1 << 30), // 10 GiB
	}
}

// Classify maps a byte count to its size class. Pure function of size.
func (b SizeBuckets) Classify(size int64) SizeClass {
	switch {
	case size < b.Tiny:
		return SizeTiny
	case size < b.Small:
		return SizeSmall
	case size < b.Medium:
		return SizeMedium
	case size < b.Large:
		return SizeLarge
	default:
		return SizeHuge
	}
}

// Rank returns the ordinal of the size class, Tiny being 0. Used by the
// scoring model's monotonic size function.
func (c SizeClass) Rank() int {
	switch c {
	case SizeTiny:
		return 0
	case SizeSmall:
		return 1
	case SizeMedium:
		return 2
	case SizeLarge:
		return 3
	case SizeHuge:
		return 4
	default:
		return 0
	}
}

// Signal is the derived, read-only view computed from one FileEntry and the
// scan's wall-clock reference time.
type Signal struct {
	AgeDays  int       `json:"age_days" yaml:"age_days"`   // floor((now - mtime) / 24h), clamped >= 0
	IdleDays int       `json:"idle_days" yaml:"idle_days"` // floor((now - atime) / 24h), clamped >= 0
	Class    SizeClass `json:"size_class" yaml:"size_class"`

	// AtimeReliable is false when the access time looked untracked
	// (relatime/noatime mounts) and IdleDays fell back to AgeDays.
	// The scoring model lowers confidence on such entries.
	AtimeReliable bool `json:"atime_reliable" yaml:"atime_reliable"`
}
