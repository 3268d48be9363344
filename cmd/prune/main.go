package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hrm-e2e/internal/di"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/infrastructure/env"

	"github.com/fatih/color"
	"github.com/ysmood/gson"
)

func main() {
	os.Exit(run())
}

func run() int {
	envService := env.NewEnvService()
	cfg, err := env.Load(envService)
	if err != nil {
		log.Printf("invalid configuration: %v", err)
		return 2
	}

	root := flag.String("root", cfg.Prune.Root, "results directory to prune")
	days := flag.Int("days", cfg.Prune.RetentionDays, "keep artifacts modified within this many days")
	patterns := flag.String("patterns", strings.Join(cfg.Prune.Patterns, ","), "comma-separated file name patterns")
	dryRun := flag.Bool("dry-run", false, "report what would be removed without removing it")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	if *days < 0 {
		log.Printf("-days must not be negative, got %d", *days)
		return 2
	}
	cfg.Prune.Root = *root
	cfg.Prune.RetentionDays = *days
	cfg.Prune.Patterns = splitPatterns(*patterns)

	logger, err := di.NewLogger(cfg, "prune")
	if err != nil {
		log.Printf("initialization failed: %v", err)
		return 2
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := di.NewPruner(cfg, logger, *dryRun).Prune(ctx)
	if err != nil {
		logger.Error("prune failed", "error", err)
		color.Red("prune failed: %v", err)
		return 1
	}

	if *asJSON {
		fmt.Println(reportJSON(report))
	} else {
		printReport(report)
	}

	if len(report.Errors) > 0 {
		return 1
	}
	return 0
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printReport(r *entity.PruneReport) {
	if r.Missing {
		color.Yellow("No %s directory found", r.Root)
		return
	}

	verb := "Removed"
	if r.DryRun {
		verb = "Would remove"
	}
	for _, p := range r.Removed {
		fmt.Printf("  %s %s\n", color.RedString("-"), p)
	}
	for _, d := range r.Dirs {
		fmt.Printf("  %s %s/\n", color.RedString("-"), d)
	}
	for _, e := range r.Errors {
		color.Red("  ! %s: %v", e.Path, e.Err)
	}

	summary := fmt.Sprintf("%s %d artifact(s) and %d empty director(ies) older than %s from %s",
		verb, len(r.Removed), len(r.Dirs), r.Cutoff.Format("2006-01-02 15:04"), r.Root)
	if r.Count() == 0 {
		color.Green("Nothing to prune in %s", r.Root)
		return
	}
	color.Green("%s", summary)
}

func reportJSON(r *entity.PruneReport) string {
	errs := make([]any, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, map[string]any{"path": e.Path, "error": e.Err.Error()})
	}
	return gson.New(map[string]any{
		"root":    r.Root,
		"cutoff":  r.Cutoff.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"dry_run": r.DryRun,
		"missing": r.Missing,
		"removed": strs(r.Removed),
		"dirs":    strs(r.Dirs),
		"errors":  errs,
		"count":   r.Count(),
	}).JSON("", "  ")
}

func strs(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
