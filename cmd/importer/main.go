package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/app"
	"github.com/segyhp/banquito/internal/config"
	"github.com/segyhp/banquito/internal/legacy"
	"github.com/segyhp/banquito/internal/logger"
	"github.com/segyhp/banquito/internal/repository"
)

func main() {
	flags := pflag.NewFlagSet("importer", pflag.ExitOnError)
	source := flags.StringP("source", "s", "", "path to the legacy SQLite database")
	layouts := flags.StringSlice("date-layout", nil, "Go time layouts tried on legacy dates, in order (default dd/mm/yyyy, yyyy-mm-dd, dd-mm-yyyy)")
	dryRun := flags.Bool("dry-run", false, "parse the legacy data and report without writing")
	_ = flags.Parse(os.Args[1:])

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: importer --source legacy.db [--dry-run] [--date-layout 02/01/2006 ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Must(cfg.Logging)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	legacyDB, err := repository.Open("sqlite3", "file:"+*source+"?mode=ro")
	if err != nil {
		log.Fatal("failed to open legacy database", zap.String("source", *source), zap.Error(err))
	}
	defer legacyDB.Close()

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	repos := app.NewRepositories(db)

	opts := []legacy.Option{legacy.WithDryRun(*dryRun)}
	if len(*layouts) > 0 {
		trimmed := make([]string, 0, len(*layouts))
		for _, l := range *layouts {
			trimmed = append(trimmed, strings.TrimSpace(l))
		}
		opts = append(opts, legacy.WithLayouts(trimmed...))
	}

	importer := legacy.NewImporter(legacyDB, repos.Clients, repos.Loans, repos.Payments, log, opts...)

	report, err := importer.Run(ctx)
	if err != nil {
		log.Fatal("legacy import failed", zap.Error(err))
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	_ = out.Encode(report)
}
