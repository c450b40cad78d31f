package transfer

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/ledmatrix/pkg/cli/sh"
	"github.com/robotalks/ledmatrix/pkg/host"
	"github.com/robotalks/ledmatrix/pkg/pixel"
	"github.com/robotalks/ledmatrix/pkg/report"
)

var (
	// SendCmd sends named patterns.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "PATTERN...",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PATTERN required"))
				return
			}
			ctx, cancel := sh.CommandContext()
			defer cancel()
			h := sh.Host(c)
			for _, name := range c.Args {
				res, err := h.Send(ctx, name)
				if res != nil {
					sh.PrintResult(c, name, res)
				}
				if err != nil {
					c.Err(err)
					return
				}
			}
		}),
	}

	// RunCmd sends a pattern sequence with a dwell between patterns.
	RunCmd = ishell.Cmd{
		Name: "run",
		Help: "[PATTERN...]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			ctx, cancel := sh.CommandContext()
			defer cancel()
			names := c.Args
			results, err := sh.Host(c).RunSequence(ctx, names...)
			if len(names) == 0 {
				names = host.DefaultSequence
			}
			var passed int
			for n, res := range results {
				sh.PrintResult(c, names[n], res)
				if res.OK() {
					passed++
				}
			}
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d/%d passed\n", passed, len(results))
		}),
	}

	// ProbeCmd checks the link echoes.
	ProbeCmd = ishell.Cmd{
		Name: "probe",
		Help: "[PATTERN]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			ctx, cancel := sh.CommandContext()
			defer cancel()
			h := sh.Host(c)
			if len(c.Args) == 0 {
				ok, err := h.Probe(ctx)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("echo: %v\n", ok)
				return
			}
			res, err := h.ProbeThenSend(ctx, c.Args[0])
			if res != nil {
				sh.PrintResult(c, c.Args[0], res)
			}
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// StreamCmd streams random frames until Ctrl-C or COUNT frames.
	StreamCmd = ishell.Cmd{
		Name: "stream",
		Help: "[COUNT]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			count := s.Config.Count
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val < 0 {
					c.Err(fmt.Errorf("Invalid COUNT: %q", c.Args[0]))
					return
				}
				count = val
			}
			ctx, cancel := sh.CommandContext()
			defer cancel()
			h := sh.Host(c)
			if addr := s.Config.MetricsAddr; addr != "" {
				m := report.NewMetrics()
				srv := &http.Server{Addr: addr, Handler: m.Handler()}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						glog.Errorf("metrics server: %v", err)
					}
				}()
				defer srv.Close()
				saved := h.Reporter
				h.Reporter = report.Multi{saved, m}
				defer func() { h.Reporter = saved }()
			}
			stats, err := h.Stream(ctx, s.Config.Interval, count, nil)
			c.Printf("%d frames, %d mismatches\n", stats.Frames, stats.Mismatches)
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// PatternsCmd lists patterns or shows one.
	PatternsCmd = ishell.Cmd{
		Name:    "patterns",
		Aliases: []string{"p"},
		Help:    "[PATTERN]",
		Func: func(c *ishell.Context) {
			reg := pixel.NewRegistry()
			if s := sh.ShellFrom(c); s.Link != nil {
				reg = s.Link.Host.Patterns
			}
			if len(c.Args) == 0 {
				c.Println(strings.Join(reg.Names(), " "))
				return
			}
			p, ok := reg.Lookup(c.Args[0])
			if !ok {
				c.Err(fmt.Errorf("unknown pattern %q", c.Args[0]))
				return
			}
			g := p.Grid()
			for i := 0; i < pixel.Size; i++ {
				row := g.Row(i)
				c.Printf("% X\n", row[:])
			}
		},
	}
)

func init() {
	sh.AddCmds(
		&SendCmd,
		&RunCmd,
		&ProbeCmd,
		&StreamCmd,
		&PatternsCmd,
	)
}
