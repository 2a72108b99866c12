// Command relcalc evaluates programs of a lambda calculus with records and
// relational tables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/relcalc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
