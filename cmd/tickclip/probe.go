package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/tickclip/pkg/adapters/h264decoder"
	"github.com/user/tickclip/pkg/adapters/tsprobe"
)

// runProbe prints what a transport stream holds and optionally verifies it.
func runProbe(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit(l10n.T("FILE argument is required"), exitFailure)
	}

	report, err := tsprobe.ProbeFile(path)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintln(w, l10n.F("Streams: %d", report.Streams))
	fmt.Fprintln(w, l10n.F("Codec: %s", report.Codec))
	fmt.Fprintln(w, l10n.F("Resolution: %dx%d", report.Width, report.Height))
	fmt.Fprintln(w, l10n.F("Frames: %d (%d keyframes)", report.Frames, report.Keyframes))
	if rel := report.RelativePTS(); len(rel) > 0 {
		fmt.Fprintln(w, l10n.F("PTS: %d to %d (%.3f s)", report.PTS[0], report.PTS[len(report.PTS)-1], report.Duration()))
	}
	if report.DecodeErrors > 0 {
		fmt.Fprintln(w, l10n.F("Decode errors: %d", report.DecodeErrors))
	}

	bound := -1
	if c.IsSet("expect-frames") {
		bound = c.Int("expect-frames")
	}
	if err := report.Verify(bound); err != nil {
		return err
	}

	if c.Bool("decode") {
		return verifyDecode(c, path, report)
	}
	return nil
}

// verifyDecode decodes the whole file and checks that it yields no more
// frames than the container carries.
func verifyDecode(c *cli.Context, path string, report *tsprobe.Report) error {
	decoder, err := h264decoder.New()
	if err != nil {
		return err
	}

	decoded, err := decoder.CountFrames(c.Context, path)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, l10n.F("Decoded frames: %d", decoded))

	if decoded > report.Frames {
		return fmt.Errorf("%w: decoded %d frames from %d access units", tsprobe.ErrVerification, decoded, report.Frames)
	}
	return nil
}
