// Package config holds the settings shared by the ledmatrix commands.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/ledmatrix/pkg/comm"
	"github.com/robotalks/ledmatrix/pkg/transport"
	"github.com/robotalks/ledmatrix/pkg/transport/serial"
)

// Config defines the configurations of a host.
type Config struct {
	Link        string
	Baud        int
	ReadTimeout time.Duration
	Mode        string
	Settle      time.Duration
	SkipVerify  bool
	Dwell       time.Duration
	Interval    time.Duration
	Count       int
	ReportURL   string
	MetricsAddr string
	File        string

	// Patterns are named 64-byte tables loaded from File.
	Patterns map[string][]byte
}

// Defaults
const (
	DefaultDwell    = 2500 * time.Millisecond
	DefaultInterval = time.Second
)

// Environment variables overriding the defaults.
const (
	EnvLink      = "LEDMATRIX_LINK"
	EnvBaud      = "LEDMATRIX_BAUD"
	EnvMode      = "LEDMATRIX_MODE"
	EnvReportURL = "LEDMATRIX_REPORT_URL"
	EnvConfig    = "LEDMATRIX_CONFIG"
)

var defaultConfig = Config{
	Baud:        serial.DefaultBaud,
	ReadTimeout: serial.DefaultReadTimeout,
	Mode:        comm.ModeEcho.String(),
	Settle:      comm.DefaultSettle,
	Dwell:       DefaultDwell,
	Interval:    DefaultInterval,
}

func init() {
	defaultConfig.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvLink); v != "" {
		c.Link = v
	}
	if v := getenv(EnvBaud); v != "" {
		if baud, err := strconv.Atoi(v); err == nil && baud > 0 {
			c.Baud = baud
		}
	}
	if v := getenv(EnvMode); v != "" {
		c.Mode = v
	}
	if v := getenv(EnvReportURL); v != "" {
		c.ReportURL = v
	}
	if v := getenv(EnvConfig); v != "" {
		c.File = v
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	defaultConfig.BindFlags(flag.CommandLine)
}

// BindFlags binds the settings to flags in fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Link, "link", c.Link, "Link to the matrix: serial port name, tcp://, ws://, mqtt:// or loop://.")
	fs.IntVar(&c.Baud, "baud", c.Baud, "Serial baud rate.")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "Per-read timeout when waiting for the echo.")
	fs.StringVar(&c.Mode, "mode", c.Mode, "Framing mode: echo or checksum.")
	fs.DurationVar(&c.Settle, "settle", c.Settle, "Wait after writing a frame before reading back, 0 to disable.")
	fs.BoolVar(&c.SkipVerify, "no-verify", c.SkipVerify, "Do not read back after writing.")
	fs.DurationVar(&c.Dwell, "dwell", c.Dwell, "Display time of each pattern in a sequence.")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Interval between frames when streaming.")
	fs.IntVar(&c.Count, "count", c.Count, "Number of frames to stream, 0 for unlimited.")
	fs.StringVar(&c.ReportURL, "report-url", c.ReportURL, "MQTT broker URL to publish transfer reports.")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Address to serve Prometheus metrics, e.g. :9100.")
	fs.StringVar(&c.File, "config", c.File, "TOML config file.")
}

// flagFields copies the field bound to a flag.
var flagFields = map[string]func(dst, src *Config){
	"link":         func(dst, src *Config) { dst.Link = src.Link },
	"baud":         func(dst, src *Config) { dst.Baud = src.Baud },
	"read-timeout": func(dst, src *Config) { dst.ReadTimeout = src.ReadTimeout },
	"mode":         func(dst, src *Config) { dst.Mode = src.Mode },
	"settle":       func(dst, src *Config) { dst.Settle = src.Settle },
	"no-verify":    func(dst, src *Config) { dst.SkipVerify = src.SkipVerify },
	"dwell":        func(dst, src *Config) { dst.Dwell = src.Dwell },
	"interval":     func(dst, src *Config) { dst.Interval = src.Interval },
	"count":        func(dst, src *Config) { dst.Count = src.Count },
	"report-url":   func(dst, src *Config) { dst.ReportURL = src.ReportURL },
	"metrics-addr": func(dst, src *Config) { dst.MetricsAddr = src.MetricsAddr },
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load resolves the defaults against the command line flags.
func Load() (*Config, error) {
	return defaultConfig.Resolve(flag.CommandLine)
}

// Resolve returns a copy of c with File applied if set. Flags set
// explicitly in fs, which must be bound to c, take precedence over the file.
func (c *Config) Resolve(fs *flag.FlagSet) (*Config, error) {
	conf := *c
	if conf.File == "" {
		return &conf, nil
	}
	if err := conf.LoadFile(conf.File); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if fn, ok := flagFields[f.Name]; ok {
			fn(&conf, c)
		}
	})
	return &conf, nil
}

// ParseMode parses Mode.
func (c *Config) ParseMode() (comm.Mode, error) {
	return comm.ParseMode(c.Mode)
}

// TransportOptions returns the options to open Link.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{Baud: c.Baud, ReadTimeout: c.ReadTimeout}
}

// OpenSession opens Link and creates a session on it.
func (c *Config) OpenSession() (*comm.Session, transport.Transport, error) {
	mode, err := c.ParseMode()
	if err != nil {
		return nil, nil, err
	}
	t, err := transport.Open(c.Link, c.TransportOptions())
	if err != nil {
		return nil, nil, err
	}
	return c.NewSession(t, mode), t, nil
}

// NewSession creates a session using the config.
func (c *Config) NewSession(t transport.Transport, mode comm.Mode) *comm.Session {
	s := comm.NewSession(t, mode)
	s.Settle = c.Settle
	s.SkipVerify = c.SkipVerify
	return s
}
