package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pos-nfc-api/internal/app"
	"pos-nfc-api/internal/config"
	"pos-nfc-api/internal/core/services"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		name     = flag.String("name", "", "model version name (default apdu-<UTC timestamp>)")
		trees    = flag.Int("trees", 0, "number of trees (default CLASSIFIER_TREES)")
		maxDepth = flag.Int("max-depth", 0, "maximum tree depth (default CLASSIFIER_MAX_DEPTH)")
		seed     = flag.Int64("seed", 0, "random seed (default CLASSIFIER_SEED)")
		dryRun   = flag.Bool("dry-run", false, "fit and report accuracy without storing a model")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	app.InitLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	opts := services.TrainOptions{Name: *name, Trees: *trees, MaxDepth: *maxDepth}
	if flag.CommandLine.Changed("seed") {
		opts.Seed = seed
	}

	if err := run(ctx, a, opts, *dryRun); err != nil {
		log.WithError(err).Error("training failed")
		a.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, opts services.TrainOptions, dryRun bool) error {
	if dryRun {
		report, err := a.Models.Evaluate(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("samples=%d positives=%d features=%d trees=%d oob_accuracy=%.4f\n",
			report.Samples, report.Positives, report.Features, report.Trees, report.OOBAccuracy)
		return nil
	}

	record, err := a.Models.Train(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("model=%s id=%s samples=%d accuracy=%.4f uri=%s\n",
		record.Name, record.ID, record.SampleCount, record.Accuracy, record.URI)
	return nil
}
