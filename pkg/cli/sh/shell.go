package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ledmatrix/pkg/comm"
	"github.com/robotalks/ledmatrix/pkg/config"
	fx "github.com/robotalks/ledmatrix/pkg/framework"
	"github.com/robotalks/ledmatrix/pkg/host"
	"github.com/robotalks/ledmatrix/pkg/report"
	"github.com/robotalks/ledmatrix/pkg/transport"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell  *ishell.Shell
	Config *config.Config
	Link   *OpenLink
}

// OpenLink is an open transport with a host driving it.
type OpenLink struct {
	Name      string
	Transport transport.Transport
	Host      *host.Host

	publisher *report.Publisher
}

// Close closes the transport and the report publisher.
func (l *OpenLink) Close() error {
	var errs fx.AggregatedError
	errs.AddFor(l.Name, l.Transport.Close())
	if l.publisher != nil {
		errs.AddFor("report publisher", l.publisher.Close())
	}
	return errs.Aggregate()
}

const (
	shellKey     = "$shell"
	closedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&StatusCmd,
		&ModeCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open link.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Link == nil {
			c.Err(fmt.Errorf("link not open"))
			return
		}
		fn(c)
	}
}

// Host returns the host of the open link.
func Host(c *ishell.Context) *host.Host {
	return ShellFrom(c).Link.Host
}

// CommandContext returns a context canceled by Ctrl-C while a command runs.
func CommandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// PrintResult prints a transfer result.
func PrintResult(c *ishell.Context, name string, res *comm.Result) {
	s := ShellFrom(c)
	if s.OutputJSON {
		m := report.New(s.Link.Name, name, comm.Payload{}, res)
		m.Payload = nil
		out, err := json.Marshal(m)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Printf("%s: %s\n", name, res)
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Open opens a link, replacing the current one.
func (s *Shell) Open(name string) error {
	mode, err := s.Config.ParseMode()
	if err != nil {
		return err
	}
	t, err := transport.Open(name, s.Config.TransportOptions())
	if err != nil {
		return err
	}
	link := &OpenLink{Name: name, Transport: t}
	link.Host = host.New(s.Config.NewSession(t, mode), name)
	link.Host.Dwell = s.Config.Dwell
	for pattern, table := range s.Config.Patterns {
		if err := link.Host.Patterns.RegisterTable(pattern, table); err != nil {
			t.Close()
			return err
		}
	}
	if s.Config.ReportURL != "" {
		if link.publisher, err = report.NewPublisher(s.Config.ReportURL); err != nil {
			t.Close()
			return err
		}
		link.Host.Reporter = report.Multi{report.Log{}, link.publisher}
	}
	s.Close()
	s.Link = link
	s.Shell.SetPrompt(fmt.Sprintf("%s %s > ", name, mode))
	return nil
}

// Close closes current link.
func (s *Shell) Close() error {
	if s.Link == nil {
		return nil
	}
	err := s.Link.Close()
	s.Link = nil
	s.Shell.SetPrompt(closedPrompt)
	return err
}

// ErrNoCommand indicates nothing to run in eval-only mode.
var ErrNoCommand = errors.New("command expected")

// Run runs the shell. The link is closed on return.
func (s *Shell) Run(args ...string) (err error) {
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	if s.AutoOpen && s.Config.Link != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Link)
		}
		if err := s.Open(s.Config.Link); err != nil {
			return fmt.Errorf("open %q failed: %w", s.Config.Link, err)
		}
	}

	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if s.Interactive {
		s.Shell.Run()
		return nil
	}
	return ErrNoCommand
}

var (
	// OpenCmd opens a link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[LINK]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			name := s.Config.Link
			if len(c.Args) > 0 {
				name = c.Args[0]
			}
			if name == "" {
				c.Err(fmt.Errorf("LINK required"))
				return
			}
			if err := s.Open(name); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current link.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Close(); err != nil {
				c.Err(err)
			}
		},
	}

	// StatusCmd shows the link and the last transfer state.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: MustBeOpen(func(c *ishell.Context) {
			l := ShellFrom(c).Link
			sess := l.Host.Session
			c.Printf("link=%s mode=%s settle=%s verify=%v state=%s\n",
				l.Name, sess.Mode, sess.Settle, !sess.SkipVerify, sess.State())
		}),
	}

	// ModeCmd shows or switches the framing mode.
	ModeCmd = ishell.Cmd{
		Name: "mode",
		Help: "[echo|checksum]",
		Func: MustBeOpen(func(c *ishell.Context) {
			s := ShellFrom(c)
			sess := s.Link.Host.Session
			if len(c.Args) == 0 {
				c.Println(sess.Mode)
				return
			}
			mode, err := comm.ParseMode(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sess.Mode = mode
			s.Config.Mode = mode.String()
			s.Shell.SetPrompt(fmt.Sprintf("%s %s > ", s.Link.Name, mode))
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	if err := New(conf).WithAutoOpen(true).Run(flag.Args()...); err != nil {
		log.Fatalln(err)
	}
}
