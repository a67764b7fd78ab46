// Package main provides the CLI entry point for tickclip.
package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newApp builds the CLI. Running without a subcommand generates a clip.
func newApp() *cli.App {
	return &cli.App{
		Name:      "tickclip",
		Usage:     l10n.T("Generate a timestamp test video as MPEG-TS"),
		UsageText: "tickclip [options]\ntickclip probe FILE\ntickclip version",
		Version:   version,
		Flags:     generateFlags(),
		Action:    runGenerate,
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  l10n.T("Render the wall clock into an H.264 transport stream"),
				Flags:  generateFlags(),
				Action: runGenerate,
			},
			{
				Name:      "probe",
				Usage:     l10n.T("Inspect a generated transport stream"),
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "expect-frames",
						Usage: l10n.T("Fail when the file holds more frames than `N` or timestamps do not increase"),
					},
					&cli.BoolFlag{
						Name:  "decode",
						Usage: l10n.T("Also decode the file with ffmpeg and count the frames"),
					},
				},
				Action: runProbe,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("tickclip version %s", version))
					return nil
				},
			},
		},
		HideVersion: true,
		// Exit codes are mapped in main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}
