package main

import (
	"time"

	"github.com/alecthomas/kong"
	"gitlab.com/tozd/go/cli"
	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/go/zerolog"
)

//nolint:lll
type App struct {
	zerolog.LoggingConfig

	Version kong.VersionFlag `help:"Show program's version and exit." short:"V" yaml:"-"`

	Input      int           `default:"5"                        env:"SQUARE_INPUT"       help:"Number to square. Default: ${default}."                                                placeholder:"INT"      short:"n"`
	Delay      time.Duration `default:"2s"                       env:"SQUARE_DELAY"       help:"Duration of the simulated calculation. Default: ${default}."                           placeholder:"DURATION"`
	Work       time.Duration `default:"1s"                       env:"SQUARE_WORK"        help:"Duration of other work done while the calculation is in progress. Default: ${default}." placeholder:"DURATION"`
	Fail       bool          `                                   env:"SQUARE_FAIL"        help:"Make the calculation fail."`
	Policy     string        `default:"async" enum:"async,deferred" env:"SQUARE_POLICY"   help:"Launch policy. Possible: ${enum}. Default: ${default}."`
	MaxWorkers int64         `                                   env:"SQUARE_MAX_WORKERS" help:"Maximum number of workers running at the same time. Zero means no limit."             placeholder:"INT"`
	Rate       float64       `                                   env:"SQUARE_RATE"        help:"Maximum number of worker starts per second. Zero means no limit."                     placeholder:"FLOAT"`
	Record     string        `                                   env:"SQUARE_RECORD"      help:"Path to a file to write recorded lifecycle events to, as JSON."                       placeholder:"PATH"     type:"path"`
}

func main() {
	var app App
	cli.Run(&app, kong.Vars{}, func(_ *kong.Context) errors.E {
		return app.Run(app.Logger)
	})
}
