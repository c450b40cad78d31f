package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ledmatrix/pkg/comm"
)

func tableText(v string) string {
	return "[" + strings.TrimSuffix(strings.Repeat(v+",", 64), ",") + "]"
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLink:      "/dev/ttyACM0",
		EnvBaud:      "9600",
		EnvMode:      "checksum",
		EnvReportURL: "mqtt://broker:1883/ledmatrix/",
	}
	c := NewConfig()
	c.applyEnv(func(key string) string { return env[key] })
	require.Equal(t, "/dev/ttyACM0", c.Link)
	require.Equal(t, 9600, c.Baud)
	require.Equal(t, "checksum", c.Mode)
	require.Equal(t, "mqtt://broker:1883/ledmatrix/", c.ReportURL)

	c = NewConfig()
	baud := c.Baud
	c.applyEnv(func(key string) string {
		if key == EnvBaud {
			return "fast"
		}
		return ""
	})
	require.Equal(t, baud, c.Baud)
}

func TestLoadString(t *testing.T) {
	c := NewConfig()
	err := c.LoadString(`
link = "tcp://matrix:7000"
mode = "b"
settle = "250ms"
interval = "2s"
count = 10

[patterns]
dim = ` + tableText("1") + `
`)
	require.NoError(t, err)
	require.Equal(t, "tcp://matrix:7000", c.Link)
	mode, err := c.ParseMode()
	require.NoError(t, err)
	require.Equal(t, comm.ModeChecksum, mode)
	require.Equal(t, 250*time.Millisecond, c.Settle)
	require.Equal(t, 2*time.Second, c.Interval)
	require.Equal(t, 10, c.Count)
	require.Equal(t, DefaultDwell, c.Dwell)
	require.Len(t, c.Patterns["dim"], 64)
	require.Equal(t, byte(1), c.Patterns["dim"][63])
}

func TestLoadStringErrors(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"bad mode", `mode = "crc"`},
		{"bad duration", `settle = "soon"`},
		{"bad baud", `baud = 0`},
		{"short pattern", "[patterns]\nx = [1, 2, 3]"},
		{"pattern range", "[patterns]\nx = " + tableText("256")},
		{"syntax", `link = `},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, NewConfig().LoadString(tc.text))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledmatrix.toml")
	require.NoError(t, os.WriteFile(path, []byte(`link = "loop://"`), 0644))
	c := NewConfig()
	require.NoError(t, c.LoadFile(path))
	require.Equal(t, "loop://", c.Link)

	require.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestOpenSession(t *testing.T) {
	c := NewConfig()
	c.Link = "loop://"
	c.Mode = "checksum"
	c.Settle = 0
	c.ReadTimeout = 20 * time.Millisecond
	s, tr, err := c.OpenSession()
	require.NoError(t, err)
	defer tr.Close()
	require.Equal(t, comm.ModeChecksum, s.Mode)
	require.Zero(t, s.Settle)

	c.Mode = "crc"
	_, _, err = c.OpenSession()
	require.Error(t, err)
}

func TestResolveFlagsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledmatrix.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "echo"
settle = "2s"
dwell = "1s"
`), 0644))

	base := NewConfig()
	fs := flag.NewFlagSet("ledctl", flag.ContinueOnError)
	base.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-mode", "checksum", "-settle", "0s"}))

	c, err := base.Resolve(fs)
	require.NoError(t, err)
	require.Equal(t, "checksum", c.Mode)
	require.Zero(t, c.Settle)
	require.Equal(t, time.Second, c.Dwell)
	require.Equal(t, path, c.File)
}

func TestResolveWithoutFile(t *testing.T) {
	base := NewConfig()
	fs := flag.NewFlagSet("ledctl", flag.ContinueOnError)
	base.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-link", "loop://"}))
	c, err := base.Resolve(fs)
	require.NoError(t, err)
	require.Equal(t, "loop://", c.Link)
	require.NotSame(t, base, c)
}
