// Command cqlexec runs one CQL statement and prints the rows and server
// warnings.
//
// Usage:
//
//	cqlexec -c 127.0.0.1 -q "SELECT * FROM store.shopping_cart;"
//	cqlexec --config cqlexec.yaml --format table -f query.cql
//	cqlexec password set --username cassandra < password.txt
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.command().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cqlexec:", err)
		stop()
		os.Exit(1)
	}
}
