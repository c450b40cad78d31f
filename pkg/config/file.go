package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/ledmatrix/pkg/comm"
)

type fileConfig struct {
	Link        string           `toml:"link"`
	Baud        int              `toml:"baud"`
	ReadTimeout string           `toml:"read_timeout"`
	Mode        string           `toml:"mode"`
	Settle      string           `toml:"settle"`
	SkipVerify  bool             `toml:"no_verify"`
	Dwell       string           `toml:"dwell"`
	Interval    string           `toml:"interval"`
	Count       int              `toml:"count"`
	ReportURL   string           `toml:"report_url"`
	MetricsAddr string           `toml:"metrics_addr"`
	Patterns    map[string][]int `toml:"patterns"`
}

// LoadFile overlays settings defined in a TOML file.
func (c *Config) LoadFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return c.apply(meta, &raw)
}

// LoadString overlays settings from TOML text.
func (c *Config) LoadString(text string) error {
	var raw fileConfig
	meta, err := toml.Decode(text, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return c.apply(meta, &raw)
}

func (c *Config) apply(meta toml.MetaData, raw *fileConfig) error {
	if meta.IsDefined("link") {
		c.Link = strings.TrimSpace(raw.Link)
	}
	if meta.IsDefined("baud") {
		if raw.Baud <= 0 {
			return fmt.Errorf("invalid baud %d", raw.Baud)
		}
		c.Baud = raw.Baud
	}
	if meta.IsDefined("mode") {
		mode := strings.TrimSpace(raw.Mode)
		if _, err := comm.ParseMode(mode); err != nil {
			return err
		}
		c.Mode = mode
	}
	if meta.IsDefined("no_verify") {
		c.SkipVerify = raw.SkipVerify
	}
	if meta.IsDefined("count") {
		c.Count = raw.Count
	}
	if meta.IsDefined("report_url") {
		c.ReportURL = strings.TrimSpace(raw.ReportURL)
	}
	if meta.IsDefined("metrics_addr") {
		c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"read_timeout", raw.ReadTimeout, &c.ReadTimeout},
		{"settle", raw.Settle, &c.Settle},
		{"dwell", raw.Dwell, &c.Dwell},
		{"interval", raw.Interval, &c.Interval},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dest = v
	}

	if len(raw.Patterns) > 0 && c.Patterns == nil {
		c.Patterns = make(map[string][]byte)
	}
	for name, values := range raw.Patterns {
		table, err := toTable(values)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
		c.Patterns[name] = table
	}
	return nil
}

func toTable(values []int) ([]byte, error) {
	if len(values) != comm.PayloadSize {
		return nil, fmt.Errorf("expect %d values, got %d", comm.PayloadSize, len(values))
	}
	table := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 0xFF {
			return nil, fmt.Errorf("value %d at %d out of range", v, i)
		}
		table[i] = byte(v)
	}
	return table, nil
}
