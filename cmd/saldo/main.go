// Command saldo runs the pallet reconciliation engine offline: it correlates
// saved oracle responses into a ledger and validates single entries without
// a database, blob storage or an oracle connection.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newRootCmd(version).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errNeedsReview):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
