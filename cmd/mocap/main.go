package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cfoust/mocap/pkg/config"
	"github.com/cfoust/mocap/pkg/osc"
	"github.com/cfoust/mocap/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the receiver." type:"file"`
	} `cmd:"" help:"Receive motion data and drive the built-in skeleton."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`

	Send struct {
		Host     string        `help:"Host to send frames to." default:"127.0.0.1"`
		Port     int           `help:"Port to send frames to." default:"7000"`
		Rate     int           `help:"Frames per second." default:"30"`
		Duration time.Duration `help:"How long to send for. Zero sends forever." default:"10s"`
	} `cmd:"" help:"Send a synthetic skeleton animation, for testing a receiver."`

	Quit struct {
		Port int `help:"Port the tracking application listens on." default:"7000"`
	} `cmd:"" help:"Ask the tracking application to exit."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) == 1 {
		err := serveCommand([]string{})
		if err != nil {
			writeError(err)
		}
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("mocap"),
		kong.Description("a receiver for OSC motion capture streams"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf(
			"mocap %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	switch ctx.Command() {
	case "serve":
		fallthrough
	case "serve <configs>":
		err := serveCommand(CLI.Serve.Configs)
		if err != nil {
			writeError(err)
		}
	case "config":
		os.Stdout.Write(config.DEFAULT)
	case "send":
		err := sendCommand(
			CLI.Send.Host,
			CLI.Send.Port,
			CLI.Send.Rate,
			CLI.Send.Duration,
		)
		if err != nil {
			writeError(err)
		}
	case "quit":
		err := osc.SendQuit(CLI.Quit.Port)
		if err != nil {
			writeError(err)
		}
	}
}
