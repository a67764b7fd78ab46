// Package timestamp implements the clock source of the pipeline.
package timestamp

import (
	"strconv"

	"github.com/user/tickclip/pkg/ports"
)

// DefaultDivisor turns nanoseconds into 10 ms ticks.
const DefaultDivisor int64 = 10_000_000

// Source reads wall-clock time and formats it as overlay text.
type Source struct {
	clock   ports.Clock
	divisor int64
}

// New creates a Source. A divisor <= 0 selects DefaultDivisor.
func New(clock ports.Clock, divisor int64) *Source {
	if divisor <= 0 {
		divisor = DefaultDivisor
	}
	return &Source{clock: clock, divisor: divisor}
}

// Nanos returns the current time in nanoseconds since the Unix epoch.
func (s *Source) Nanos() int64 {
	return s.clock.Now().UnixNano()
}

// Text formats ns as the decimal number of divisor-sized ticks.
func (s *Source) Text(ns int64) string {
	return strconv.FormatInt(ns/s.divisor, 10)
}

// Next reads the clock and returns the overlay text for this instant.
func (s *Source) Next() (ns int64, text string) {
	ns = s.Nanos()
	return ns, s.Text(ns)
}
