package ports

import "time"

// Clock reads wall-clock time. github.com/benbjohnson/clock satisfies it.
type Clock interface {
	Now() time.Time
}
