package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DeadlineLayout is the exact civil date-time pattern deadlines must use.
const DeadlineLayout = "2006-01-02 15:04"

// Config models course.yml. It is built once at process start and passed
// into each component; nothing reads it ambiently.
type Config struct {
	Course struct {
		ID       string `yaml:"id"`
		Timezone string `yaml:"timezone"`
	} `yaml:"course"`
	Identity struct {
		Prefix string `yaml:"prefix"`
		Min    int    `yaml:"min"`
		Max    int    `yaml:"max"`
	} `yaml:"identity"`
	Submissions struct {
		Dir         string `yaml:"dir"`
		ResultsFile string `yaml:"results_file"`
	} `yaml:"submissions"`
	ForbiddenPrefixes []string        `yaml:"forbidden_prefixes"`
	Policy            PolicyConfig    `yaml:"policy"`
	Units             map[string]Unit `yaml:"units"`
}

type PolicyConfig struct {
	GraceDays         int `yaml:"grace_days"`
	LatePenaltyPoints int `yaml:"late_penalty_points"`
	ZeroAfterDays     int `yaml:"zero_after_days"`
	UnitMaxPoints     int `yaml:"unit_max_points"`
}

type Unit struct {
	Deadline string `yaml:"deadline"`
	Suite    string `yaml:"suite"`
}

// Location loads the configured civil timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Course.Timezone)
	if err != nil {
		return nil, fmt.Errorf("course timezone %q: %w", c.Course.Timezone, err)
	}
	return loc, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Course.ID == "" {
		return fmt.Errorf("config.course.id is required")
	}
	if c.Course.Timezone == "" {
		return fmt.Errorf("config.course.timezone is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Identity.Prefix == "" {
		return fmt.Errorf("config.identity.prefix is required")
	}
	if c.Identity.Min < 0 || c.Identity.Max > 999 || c.Identity.Min > c.Identity.Max {
		return fmt.Errorf("config.identity range [%d,%d] must satisfy 0 <= min <= max <= 999", c.Identity.Min, c.Identity.Max)
	}
	if c.Submissions.Dir == "" {
		return fmt.Errorf("config.submissions.dir is required")
	}
	if c.Submissions.ResultsFile == "" {
		return fmt.Errorf("config.submissions.results_file is required")
	}
	if len(c.ForbiddenPrefixes) == 0 {
		return fmt.Errorf("config.forbidden_prefixes must list at least one protected area")
	}
	for _, p := range c.ForbiddenPrefixes {
		if p == "" {
			return fmt.Errorf("config.forbidden_prefixes contains an empty prefix")
		}
	}
	if c.Policy.GraceDays < 0 || c.Policy.LatePenaltyPoints < 0 {
		return fmt.Errorf("config.policy constants must be non-negative")
	}
	if c.Policy.ZeroAfterDays < 1 {
		return fmt.Errorf("config.policy.zero_after_days must be >= 1")
	}
	if c.Policy.UnitMaxPoints < 1 {
		return fmt.Errorf("config.policy.unit_max_points must be >= 1")
	}
	if len(c.Units) == 0 {
		return fmt.Errorf("config.units must define at least one graded unit")
	}
	for name, u := range c.Units {
		if u.Deadline == "" {
			return fmt.Errorf("unit %s has no deadline", name)
		}
		if _, err := time.Parse(DeadlineLayout, u.Deadline); err != nil {
			return fmt.Errorf("unit %s deadline %q does not match %q", name, u.Deadline, DeadlineLayout)
		}
		if u.Suite == "" {
			return fmt.Errorf("unit %s has no check suite", name)
		}
	}
	return nil
}

// UnitNames returns the configured graded-unit file names, unsorted.
func (c *Config) UnitNames() []string {
	names := make([]string, 0, len(c.Units))
	for name := range c.Units {
		names = append(names, name)
	}
	return names
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Load reads config from the workspace, falling back to the default course
// when course.yml does not exist.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "course.yml")
}

// Default returns the default course Config.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

const defaultTemplate = `course:
  id: py102
  timezone: America/Chicago

identity:
  prefix: PY102001
  min: 0
  max: 44

submissions:
  dir: submissions
  results_file: autograder_results.json

forbidden_prefixes:
  - autograder/
  - .github/

policy:
  grace_days: 2
  late_penalty_points: 6
  zero_after_days: 7
  unit_max_points: 20

units:
  lab00.py:
    deadline: "2026-02-26 23:59"
    suite: autograder/tests/test_lab00.py
  lab01.py:
    deadline: "2026-03-07 23:59"
    suite: autograder/tests/test_lab01.py
  lab02.py:
    deadline: "2026-03-14 23:59"
    suite: autograder/tests/test_lab02.py
  lab03.py:
    deadline: "2026-03-21 23:59"
    suite: autograder/tests/test_lab03.py
  lab04.py:
    deadline: "2026-03-28 23:59"
    suite: autograder/tests/test_lab04.py
  lab05.py:
    deadline: "2026-04-04 23:59"
    suite: autograder/tests/test_lab05.py
  lab06.py:
    deadline: "2026-04-11 23:59"
    suite: autograder/tests/test_lab06.py
  lab07.py:
    deadline: "2026-04-18 23:59"
    suite: autograder/tests/test_lab07.py
`
