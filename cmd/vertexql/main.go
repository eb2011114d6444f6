// Command vertexql serves graph space metadata as a GraphQL query API.
//
//	vertexql provision --space social
//	vertexql seed --file seed.yaml
//	vertexql serve --addr :8080
//
// Configuration is read from .env and VERTEXQL_* variables; flags win.
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
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "vertexql:", err)
		stop()
		os.Exit(1)
	}
}
