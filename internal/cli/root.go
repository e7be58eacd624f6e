package cli

import (
	"context"
	"os"
)

// Execute runs the conceptmap CLI with os.Args and returns the first
// command error. Logs go to stderr at info level, or debug with --verbose.
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
