package future

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Labels of the two execution contexts used in narration.
const (
	CallerContext = "Main goroutine"
	WorkerContext = "Worker goroutine"
)

// Narrator writes narration lines from concurrent goroutines.
// Each line is written whole, lines from different goroutines never mix.
//
// Narration is best-effort. Write errors are only logged.
//
// A nil Narrator discards everything.
type Narrator struct {
	mu sync.Mutex

	// Out receives regular narration.
	Out io.Writer
	// Err receives diagnostics.
	Err io.Writer

	// Logger, if set, is used to log write errors.
	Logger *zerolog.Logger
}

// Say writes a narration line on behalf of who.
func (n *Narrator) Say(who, format string, args ...any) {
	if n == nil {
		return
	}
	n.write(n.Out, who, format, args...)
}

// Complain writes a diagnostic line on behalf of who.
func (n *Narrator) Complain(who, format string, args ...any) {
	if n == nil {
		return
	}
	n.write(n.Err, who, format, args...)
}

func (n *Narrator) write(w io.Writer, who, format string, args ...any) {
	if w == nil {
		return
	}

	line := who + ": " + fmt.Sprintf(format, args...) + "\n"

	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := io.WriteString(w, line)
	if err != nil && n.Logger != nil {
		n.Logger.Debug().Err(err).Str("who", who).Msg("unable to write narration")
	}
}
