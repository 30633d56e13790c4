// Command reconcile prints the reconciled applicant view of a remote deployment.
//
//	reconcile --email somchai@example.com --output yaml
//	reconcile --admin --limit 20 --dedup
//	reconcile replace --kind application_form --id 7f3c... --file form.json
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hospital-recruitment-backend/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
