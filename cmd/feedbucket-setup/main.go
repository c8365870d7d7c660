package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/infra/config"
	applog "feedbucket-mcp/internal/infra/log"
	"feedbucket-mcp/internal/setup"
)

var version = "dev"

// appContext передаётся в Run каждой команды.
type appContext struct {
	ctx    context.Context
	log    zerolog.Logger
	stdout io.Writer
}

type ServerFlags struct {
	ProjectID  string `help:"Feedbucket project id." required:"" env:"FEEDBUCKET_PROJECT_ID"`
	PrivateKey string `help:"Feedbucket private key for write operations." required:"" env:"FEEDBUCKET_PRIVATE_KEY"`
	APIKey     string `help:"Optional public access token." env:"FEEDBUCKET_API_KEY"`
	BaseURL    string `help:"Feedbucket API base URL." default:"${base_url}" env:"FEEDBUCKET_API_BASE_URL"`
	Command    string `help:"Path to the MCP server binary." default:"${command}"`
}

func (f ServerFlags) entry() (setup.Entry, error) {
	return setup.NewEntry(setup.ServerOptions{
		ProjectID:  f.ProjectID,
		PrivateKey: f.PrivateKey,
		APIKey:     f.APIKey,
		BaseURL:    f.BaseURL,
		Command:    f.Command,
	})
}

type discoverCmd struct {
	URL string `help:"Website that has the Feedbucket widget installed." required:""`
}

func (c *discoverCmd) Run(app *appContext) error {
	d := setup.NewDiscoverer(setup.WithDiscoverLogger(app.log))
	id, err := d.Discover(app.ctx, c.URL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.stdout, id)
	return err
}

type installCmd struct {
	Client string `help:"Client to configure: claude, cursor, vscode, continue." required:"" enum:"claude,cursor,vscode,continue"`
	ServerFlags
}

func (c *installCmd) Run(app *appContext) error {
	client, err := setup.ParseClient(c.Client)
	if err != nil {
		return err
	}
	entry, err := c.entry()
	if err != nil {
		return err
	}
	paths, err := setup.DefaultPaths()
	if err != nil {
		return err
	}
	path, err := setup.Install(client, entry, paths)
	if err != nil {
		return err
	}
	app.log.Info().Str("client", string(client)).Str("path", path).Msg("setup: config written")
	_, err = fmt.Fprintf(app.stdout, "Feedbucket MCP server configured for %s: %s\n", client, path)
	return err
}

type printCmd struct {
	Client string `help:"Client to render the snippet for: claude, cursor, vscode, continue." required:"" enum:"claude,cursor,vscode,continue"`
	ServerFlags
}

func (c *printCmd) Run(app *appContext) error {
	client, err := setup.ParseClient(c.Client)
	if err != nil {
		return err
	}
	entry, err := c.entry()
	if err != nil {
		return err
	}
	data, err := setup.Render(client, entry)
	if err != nil {
		return err
	}
	_, err = app.stdout.Write(data)
	return err
}

var cli struct {
	Version  kong.VersionFlag `help:"Print version."`
	LogLevel string           `help:"Log level." default:"info" env:"LOG_LEVEL"`

	Discover discoverCmd `cmd:"" help:"Find the Feedbucket project id on a website."`
	Install  installCmd  `cmd:"" help:"Add the Feedbucket MCP server to a client config."`
	Print    printCmd    `cmd:"" help:"Print the client config snippet without writing it."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("feedbucket-setup"),
		kong.Description("Configure MCP clients to use the Feedbucket MCP server."),
		kong.UsageOnError(),
		kong.Vars{
			"version":  version,
			"base_url": config.DefaultBaseURL,
			"command":  setup.DefaultCommand,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &appContext{
		ctx:    ctx,
		log:    applog.NewLogger("prod", cli.LogLevel),
		stdout: os.Stdout,
	}
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
