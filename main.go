package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rusq/dlog"
	"github.com/rusq/osenv/v2"
	"github.com/rusq/tracer"
	"golang.org/x/term"

	"github.com/rusq/wipemydiscord/internal/discord"
	"github.com/rusq/wipemydiscord/internal/tui"
	"github.com/rusq/wipemydiscord/internal/waipu"
)

const AppName = "Wipe My Discord"

const usageText = `Usage: %s [flags] <token> <user_id> <channel_id>

Deletes all messages sent by the user <user_id> in the channel <channel_id>.
If <token> is "-", it is read from the terminal.

Flags:
`

var (
	version   = "dev"
	builtOn   = "just now"
	gitCommit = ""
	gitRef    = ""

	versionSig = fmt.Sprintf("%s %s (built %s)", AppName, version, builtOn)
)

var _ = godotenv.Load() // load environment variables from .env, if present

var (
	errUsage = errors.New("incorrect cli usage")
)

type Params struct {
	Token     string
	UserID    snowflake.ID
	ChannelID snowflake.ID

	BaseURL     string
	Delay       time.Duration
	DryRun      bool
	Interactive bool

	Version bool
	Verbose bool
	Trace   string
}

func main() {
	p, err := parseCmdLine(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			flag.CommandLine.Usage()
		}
		os.Exit(2)
	}
	if p.Version {
		ver(os.Stdout)
		return
	}

	dlog.SetDebug(p.Verbose)

	if p.Token == "-" {
		if p.Token, err = readToken(os.Stdin, os.Stderr); err != nil {
			dlog.Fatalf("failed to read token: %s", err)
		}
	}

	if err := run(context.Background(), p); err != nil {
		dlog.Fatal(err)
	}
}

// parseCmdLine parses flags and positional arguments.  All usage errors wrap
// errUsage.
func parseCmdLine(fs *flag.FlagSet, args []string) (Params, error) {
	var p Params
	{
		fs.StringVar(&p.BaseURL, "api", osenv.Value("DISCORD_API", discord.DefaultBaseURL), "Discord API base `url`")
		fs.DurationVar(&p.Delay, "delay", envDuration("WIPE_DELAY"), "minimum `interval` between API requests, i.e. 500ms (default: no delay)")
		fs.BoolVar(&p.DryRun, "dry", false, "dry run: list messages, but do not delete them")
		fs.BoolVar(&p.Interactive, "i", false, "interactive mode: ask for confirmation before deleting")

		fs.BoolVar(&p.Version, "v", false, "print version and exit")
		fs.BoolVar(&p.Verbose, "verbose", osenv.Value("DEBUG", "") != "", "verbose output")
		fs.StringVar(&p.Trace, "trace", osenv.Value("TRACE_FILE", ""), "trace `filename`")

		fs.Usage = func() {
			fmt.Fprintf(fs.Output(), usageText, fs.Name())
			fs.PrintDefaults()
		}
		if err := fs.Parse(args); err != nil {
			return p, err
		}
	}
	if p.Version {
		return p, nil
	}
	if fs.NArg() < 3 {
		return p, errUsage
	}
	if p.DryRun && p.Interactive {
		return p, fmt.Errorf("%w: -dry and -i are mutually exclusive", errUsage)
	}

	p.Token = fs.Arg(0)
	var err error
	if p.UserID, err = parseID("user_id", fs.Arg(1)); err != nil {
		return p, err
	}
	if p.ChannelID, err = parseID("channel_id", fs.Arg(2)); err != nil {
		return p, err
	}
	return p, nil
}

func parseID(name, s string) (snowflake.ID, error) {
	id, err := snowflake.Parse(s)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s: %q", errUsage, name, s)
	}
	return id, nil
}

func envDuration(key string) time.Duration {
	val := osenv.Value(key, "")
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		dlog.Printf("ignoring %s: %s", key, err)
		return 0
	}
	return d
}

func run(ctx context.Context, p Params) error {
	if p.Trace != "" {
		tr := tracer.New(p.Trace)
		if err := tr.Start(); err != nil {
			return err
		}
		defer tr.End()
	}

	if !p.Interactive {
		header(os.Stderr)
	}

	cl, err := discord.New(p.Token,
		discord.WithBaseURL(p.BaseURL),
		discord.WithPacing(p.Delay),
		discord.WithDebug(p.Verbose && !p.Interactive),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case p.DryRun:
		return waipu.List(ctx, os.Stdout, cl, p.ChannelID, p.UserID)
	case p.Interactive:
		return tui.New(cl, p.ChannelID, p.UserID).Run(ctx)
	default:
		n, err := waipu.Wipe(ctx, cl, p.ChannelID, p.UserID)
		if err != nil {
			return err
		}
		dlog.Debugf("deleted: %d", n)
	}
	return nil
}

// readToken prompts for the token and reads it without echoing.
func readToken(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("standard input is not a terminal")
	}
	fmt.Fprint(prompt, "Enter token (won't be shown): ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", discord.ErrNoToken
	}
	return token, nil
}

func header(w io.Writer) {
	fmt.Fprintf(w,
		"%s\n%s\n%s\n", versionSig, strings.Repeat("-", len(versionSig)),
		color.New(color.Italic).Sprint("Messages are deleted one by one and can not be restored."),
	)
	fmt.Fprintln(w)
}

func ver(w io.Writer) {
	header(w)
	if gitCommit != "" {
		fmt.Fprintf(w, "commit: %s ref: %s\n", gitCommit, gitRef)
	}
}
