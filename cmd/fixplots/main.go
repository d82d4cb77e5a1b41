// Command fixplots removes legacy/test plots and their applications.
// This is a one-shot data fix run by an operator, deliberately not
// exposed as an API route.
//
//	fixplots PLOT-001 PLT-001
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/okpanku/ministry-api/internal/adapters/postgres"
	"github.com/okpanku/ministry-api/internal/pkg/config"
)

func main() {
	plotNos := os.Args[1:]
	if len(plotNos) == 0 {
		log.Fatal("usage: fixplots <plot_no> [plot_no...]")
	}

	cfg, err := config.Load("ministry-fixplots")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	removed, err := postgres.NewPlotRepo(db).RemoveByPlotNos(ctx, plotNos)
	if err != nil {
		log.Fatalf("remove plots: %v", err)
	}

	fmt.Printf("applications cleared and %d plot(s) removed\n", removed)
}
