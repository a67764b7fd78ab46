package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/user/tickclip/pkg/adapters/tsprobe"
	"github.com/user/tickclip/pkg/config"
	"github.com/user/tickclip/pkg/orchestrator"
	"github.com/user/tickclip/pkg/ports"
)

// Process exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitOutput       = 2 // container unsupported or output not writable
	exitCodec        = 3
	exitConfig       = 4
	exitEncoder      = 5 // stream truncated with --fail-on-encoder-error
	exitVerification = 6
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	switch {
	case errors.Is(err, orchestrator.ErrStreamTruncated):
		return exitEncoder
	case errors.Is(err, ports.ErrUnsupportedContainer), errors.Is(err, ports.ErrOutputUnavailable):
		return exitOutput
	case errors.Is(err, ports.ErrCodecNotFound):
		return exitCodec
	case errors.Is(err, config.ErrInvalidConfig):
		return exitConfig
	case errors.Is(err, tsprobe.ErrVerification),
		errors.Is(err, tsprobe.ErrNotTransportStream),
		errors.Is(err, tsprobe.ErrNoVideoStream):
		return exitVerification
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return exitFailure
}
