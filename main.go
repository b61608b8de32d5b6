package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"wallsorter/config"
	"wallsorter/cvloader"
	"wallsorter/database"
	"wallsorter/imageprocessor"
	"wallsorter/logging"
	"wallsorter/processor"
	"wallsorter/relocator"
	"wallsorter/signalhandler"
	"wallsorter/utils"
)

func main() {
	args, err := utils.ParseArguments(os.Args[1:])
	if err != nil {
		if errors.Is(err, utils.ErrHelp) {
			utils.PrintUsage(os.Stdout)
			return
		}
		fmt.Printf("Error: %v\n\n", err)
		utils.PrintUsage(os.Stdout)
		os.Exit(1)
	}

	cfg, err := utils.LoadConfig(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug || cfg.LogFile != "" {
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = "wallsorter.log"
		}
		if err := logging.SetupLogger(logPath, cfg.Debug); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else if cfg.Debug {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	signalhandler.SetupHandler(cancel)

	err = run(ctx, args, cfg)
	cancel()
	logging.CloseLogger()

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args *utils.Arguments, cfg *config.Config) error {
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	switch args.Command {
	case "history":
		return handleHistoryCommand(db, args.RunID)
	case "undo":
		return handleUndoCommand(ctx, db, cfg, args.RunID)
	default:
		return handlePassCommand(ctx, db, cfg, args.Command)
	}
}

func handlePassCommand(ctx context.Context, db *sql.DB, cfg *config.Config, command string) error {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return fmt.Errorf("cannot access folder %s: %w", cfg.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", cfg.Dir)
	}

	registry := imageprocessor.NewImageLoaderRegistry(cfg.AutoOrient)
	registry.SetFallbackLoader(cvloader.New())

	mover := relocator.NewMover(cfg.Dir, db, cfg.DryRun)
	p := processor.New(cfg, registry, mover)

	if cfg.DryRun {
		fmt.Println("Dry run: no file will be moved")
	}
	logging.LogInfo("Starting %s in %s (run %s)", command, cfg.Dir, mover.RunID)

	var report *processor.Report
	switch command {
	case "duplicates":
		report, err = p.FindDuplicates(ctx)
	case "similars":
		report, err = p.FindSimilars(ctx)
	case "edits":
		report, err = p.FindNeedEdits(ctx)
	case "all":
		report, err = p.RunAll(ctx)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	if report != nil {
		report.Print(os.Stdout, cfg.DryRun)
	}
	if err != nil {
		return err
	}

	if !cfg.DryRun && report.MovedCount() > 0 {
		fmt.Printf("Undo with: undo --run=%s\n", mover.RunID)
	}
	return nil
}

func resolveRunID(db *sql.DB, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	return database.LatestRunID(db)
}

func handleHistoryCommand(db *sql.DB, runID string) error {
	runID, err := resolveRunID(db, runID)
	if err != nil {
		return err
	}

	records, err := database.ListMoves(db, runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("Run %s has no moves\n", runID)
		return nil
	}

	fmt.Printf("Run %s:\n", runID)
	for _, r := range records {
		state := ""
		if r.Restored {
			state = " (restored)"
		}
		fmt.Printf("  %s  %s -> %s%s\n", r.MovedAt.Local().Format("2006-01-02 15:04:05"), r.Source, r.Label, state)
	}

	stats, err := database.GetRunStats(db, runID)
	if err != nil {
		return err
	}
	fmt.Printf("\nSummary:\n")
	for _, l := range stats.Labels {
		fmt.Printf("- %s: %d moved, %d restored\n", l.Label, l.Moved, l.Restored)
	}
	fmt.Printf("- Total: %d\n", stats.Total())
	return nil
}

func handleUndoCommand(ctx context.Context, db *sql.DB, cfg *config.Config, runID string) error {
	runID, err := resolveRunID(db, runID)
	if err != nil {
		return err
	}

	mover := relocator.NewMover(cfg.Dir, db, cfg.DryRun)
	result, err := mover.Undo(ctx, runID)
	if result != nil {
		verb := "Restored"
		if cfg.DryRun {
			verb = "Would restore"
		}
		fmt.Printf("%s %d files of run %s\n", verb, len(result.Moved), runID)
		for _, s := range result.Skipped {
			fmt.Printf("  - could not restore %s: %v\n", s.Ref, s.Err)
		}
	}
	return err
}
