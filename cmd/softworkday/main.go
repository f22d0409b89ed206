package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/cli/messages"
	"github.com/julianstephens/softworkday/internal/cli/settings"
	"github.com/julianstephens/softworkday/internal/cli/system"
	"github.com/julianstephens/softworkday/internal/config"
	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/errors"
	"github.com/julianstephens/softworkday/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to the YAML config file. Environment variables (SOFTWORKDAY_*) override it." type:"string" default:"${config_path}"`
	Verbose bool   `name:"debug" help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize softworkday storage and install the default schedule."`
	Serve    system.ServeCmd      `cmd:"" help:"Run the notification daemon and the local detail page."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"withargs"`
	Generate messages.GenerateCmd `cmd:"" help:"Generate a grounding message."`
	Archive  messages.ArchiveCmd  `cmd:"" help:"Browse archived messages."`
	Schedule settings.ScheduleCmd `cmd:"" help:"Manage notification times."`
	Key      struct {
		Set    system.KeySetCmd    `cmd:"" help:"Store the Anthropic API key in the OS keyring."`
		Show   system.KeyShowCmd   `cmd:"" help:"Show the stored API key, masked."`
		Delete system.KeyDeleteCmd `cmd:"" help:"Remove the API key from the OS keyring."`
		Status system.KeyStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage the message generation API key."`
	Debug  system.DebugCmd  `cmd:"" help:"Debug commands for troubleshooting."`
	Notify system.NotifyCmd `cmd:"" hidden:"" help:"Send a notification now (used for testing the sink)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description(constants.Wordmark+": "+constants.Tagline),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(configPath())
	if err != nil {
		errors.Fatal(err)
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:   CLI.Verbose,
		DataDir: cfg.DataDir,
		Console: strings.HasPrefix(command, "serve"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	appCtx, err := cli.NewContext(cfg)
	if err != nil {
		errors.Fatal(err)
	}

	// Load the store before running the command (init and doctor handle their own loading)
	if needsStore(command) {
		if err := appCtx.Store.Load(context.Background()); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	appCtx.Store.Close()
	errors.Fatal(err)
}

// configPath treats the default location as optional.
func configPath() string {
	if CLI.Config == constants.DefaultConfigPath {
		return ""
	}
	return CLI.Config
}

func needsStore(command string) bool {
	for _, prefix := range []string{"init", "doctor", "key", "notify", "debug paths"} {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}
