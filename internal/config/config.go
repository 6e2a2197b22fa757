package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"contentpipe/internal/domain"
)

const (
	configPathEnv  = "CONTENTPIPE_CONFIG"
	databaseDSNEnv = "DATABASE_DSN"
	httpAddrEnv    = "HTTP_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig describes the read-only query API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"`
}

// SchedulerConfig defines when collection and re-scoring run.
type SchedulerConfig struct {
	CollectCron string `yaml:"collectCron"`
	RescoreCron string `yaml:"rescoreCron"`
}

// IngestConfig carries gate-wide policy knobs.
type IngestConfig struct {
	MaxAgeDays  int `yaml:"maxAgeDays"`
	TitleWindow int `yaml:"titleWindow"`
}

// ScoringConfig carries score policy: engagement upvote bands per source
// type and the known-author roster.
type ScoringConfig struct {
	UpvoteBands map[string][]BandConfig `yaml:"upvoteBands"`
	Authors     []AuthorConfig          `yaml:"authors"`
}

// BandConfig maps an upvote floor to a normalized engagement score.
type BandConfig struct {
	AtLeast int     `yaml:"atLeast"`
	Score   float64 `yaml:"score"`
}

// AuthorConfig pins a known author's authority score.
type AuthorConfig struct {
	Name      string  `yaml:"name"`
	Authority float64 `yaml:"authority"`
}

// RetrievalConfig defines the default blend served when callers do not
// pass an explicit distribution.
type RetrievalConfig struct {
	DefaultLimit        int                           `yaml:"defaultLimit"`
	DefaultDistribution map[domain.SourceType]float64 `yaml:"defaultDistribution"`
}

// SourceConfig describes a single registered source.
type SourceConfig struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Type            string  `yaml:"type"`
	Priority        string  `yaml:"priority"`
	BaseWeight      float64 `yaml:"baseWeight"`
	RateLimitPerDay int     `yaml:"rateLimitPerDay"`
	MinWordCount    int     `yaml:"minWordCount"`
	MaxAgeDays      int     `yaml:"maxAgeDays"`
	Active          *bool   `yaml:"active"`
	FeedURL         string  `yaml:"feedUrl"`
	Selector        string  `yaml:"selector"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Source converts a SourceConfig into the domain record, filling the
// type's reference weight when no override is given.
func (s SourceConfig) Source() (domain.Source, error) {
	if s.ID == "" {
		return domain.Source{}, fmt.Errorf("source without id")
	}

	t := domain.SourceType(s.Type)
	switch t {
	case domain.TypePrimary, domain.TypeAPI, domain.TypeRSSFeed, domain.TypeScraping:
	default:
		return domain.Source{}, fmt.Errorf("source %s: unknown type %q", s.ID, s.Type)
	}

	weight := s.BaseWeight
	ref := domain.ReferenceWeight(t)
	if weight == 0 {
		weight = ref
	}
	if weight < ref-domain.OverrideBand || weight > ref+domain.OverrideBand {
		return domain.Source{}, fmt.Errorf("source %s: baseWeight %.2f outside %.2f±%.2f", s.ID, weight, ref, domain.OverrideBand)
	}
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	priority := domain.Priority(s.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}

	active := true
	if s.Active != nil {
		active = *s.Active
	}

	return domain.Source{
		ID:              s.ID,
		Name:            s.Name,
		Type:            t,
		Priority:        priority,
		BaseWeight:      weight,
		RateLimitPerDay: s.RateLimitPerDay,
		MinWordCount:    s.MinWordCount,
		MaxAgeDays:      s.MaxAgeDays,
		Active:          active,
		FeedURL:         s.FeedURL,
		Selector:        s.Selector,
	}, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.Mode != "" {
		base.Server.Mode = override.Server.Mode
	}

	if override.Scheduler.CollectCron != "" {
		base.Scheduler.CollectCron = override.Scheduler.CollectCron
	}
	if override.Scheduler.RescoreCron != "" {
		base.Scheduler.RescoreCron = override.Scheduler.RescoreCron
	}

	if override.Ingest.MaxAgeDays > 0 {
		base.Ingest.MaxAgeDays = override.Ingest.MaxAgeDays
	}
	if override.Ingest.TitleWindow > 0 {
		base.Ingest.TitleWindow = override.Ingest.TitleWindow
	}

	if len(override.Scoring.UpvoteBands) > 0 {
		base.Scoring.UpvoteBands = override.Scoring.UpvoteBands
	}
	if len(override.Scoring.Authors) > 0 {
		base.Scoring.Authors = override.Scoring.Authors
	}

	if override.Retrieval.DefaultLimit > 0 {
		base.Retrieval.DefaultLimit = override.Retrieval.DefaultLimit
	}
	if len(override.Retrieval.DefaultDistribution) > 0 {
		base.Retrieval.DefaultDistribution = override.Retrieval.DefaultDistribution
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		Server:   ServerConfig{Addr: ":8080", Mode: "release"},
		Scheduler: SchedulerConfig{
			CollectCron: "*/30 * * * *",
			RescoreCron: "0 3 * * *",
		},
		Ingest: IngestConfig{MaxAgeDays: 180, TitleWindow: 50},
		Scoring: ScoringConfig{
			UpvoteBands: map[string][]BandConfig{
				string(domain.TypeAPI): {
					{AtLeast: 500, Score: 1.0},
					{AtLeast: 100, Score: 0.8},
					{AtLeast: 20, Score: 0.6},
					{AtLeast: 5, Score: 0.4},
				},
			},
		},
		Retrieval: RetrievalConfig{
			DefaultLimit: 50,
			DefaultDistribution: map[domain.SourceType]float64{
				domain.TypePrimary: 0.7,
				domain.TypeRSSFeed: 0.3,
			},
		},
		Sources: []SourceConfig{
			{
				ID:       "rss-default",
				Name:     "Default RSS",
				Type:     string(domain.TypeRSSFeed),
				Priority: string(domain.PriorityMedium),
				FeedURL:  "https://example.org/feed.xml",
			},
		},
	}
}
