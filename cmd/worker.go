package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yugaldekate/pingpanda/config"
	"github.com/yugaldekate/pingpanda/internal/metrics"
	"github.com/yugaldekate/pingpanda/internal/repository"
	"github.com/yugaldekate/pingpanda/internal/service"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that prunes old delivered events and reports delivery failures`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Initialize database connection
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize services
	repo := repository.NewRepository(db)
	maintenanceService := service.NewMaintenanceService(repo, metricsCollector)

	// Start the scheduled maintenance jobs
	g.Go(func() error {
		log.Info().Msg("Starting maintenance scheduler")

		// Create a scheduler
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		// Prune delivered events that are past their retention window once a day
		_, err = scheduler.NewJob(
			gocron.DurationJob(24*time.Hour),
			gocron.NewTask(func() {
				log.Info().Msg("Running delivered event pruning job")
				if _, err := maintenanceService.PruneDeliveredEvents(ctx, cfg.Worker.EventRetention); err != nil {
					log.Error().Err(err).Msg("Failed to prune delivered events")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Report recent delivery failures every hour
		_, err = scheduler.NewJob(
			gocron.DurationJob(time.Hour),
			gocron.NewTask(func() {
				if _, err := maintenanceService.ReportFailedDeliveries(ctx, time.Hour); err != nil {
					log.Error().Err(err).Msg("Failed to report delivery failures")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Start the scheduler
		scheduler.Start()

		// Wait for context cancellation
		<-ctx.Done()

		// Shutdown the scheduler
		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
