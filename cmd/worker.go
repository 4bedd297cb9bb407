package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	graphicPostgres "github.com/frahmantamala/ad-management/internal/adgraphic/postgres"
	"github.com/frahmantamala/ad-management/internal/core/events"
	"github.com/frahmantamala/ad-management/internal/mediahost"
	"github.com/frahmantamala/ad-management/pkg/logger"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for media processing and event handling.`,
}

var mediaWorkerCmd = &cobra.Command{
	Use:   "media",
	Short: "Start media host worker pool",
	Long:  `Start the media worker pool that compresses videos and uploads graphics to the hosting API`,
	Run: func(cmd *cobra.Command, args []string) {
		startMediaWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers     int
	jobQueueSize   int
	workerPoolSize int
	apiURL         string
	apiKey         string
)

func startMediaWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init gorm: %v\n", err)
		os.Exit(1)
	}

	graphicRepo := graphicPostgres.NewRepository(gormDB)

	mediaConfig := mediahost.Config{
		APIURL:         getStringFlag(apiURL, config.Media.APIURL),
		APIKey:         getStringFlag(apiKey, config.Media.APIKey),
		UploadTimeout:  config.Media.UploadTimeout,
		MaxWorkers:     getIntFlag(maxWorkers, config.Media.MaxWorkers),
		JobQueueSize:   getIntFlag(jobQueueSize, config.Media.JobQueueSize),
		WorkerPoolSize: getIntFlag(workerPoolSize, config.Media.WorkerPoolSize),
	}

	lg.Info("starting media worker",
		"max_workers", mediaConfig.MaxWorkers,
		"job_queue_size", mediaConfig.JobQueueSize,
		"worker_pool_size", mediaConfig.WorkerPoolSize,
		"api_url", mediaConfig.APIURL)

	compressor := mediahost.NewCompressor(config.Media.FFmpegPath, config.Media.FFprobePath, config.Media.CompressionPercent)
	client := mediahost.NewClient(mediaConfig, compressor, graphicRepo.UpdateFileURL, lg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("media worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down media worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		lg.Info("media worker pool shutdown complete")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe(events.TypeGraphicUploaded, func(ctx context.Context, event events.Event) error {
		lg.Info("received graphic uploaded event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	lg.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down event bus", "signal", sig)
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	mediaWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	mediaWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	mediaWorkerCmd.Flags().IntVar(&workerPoolSize, "worker-pool-size", 0, "Worker pool channel size (overrides config)")
	mediaWorkerCmd.Flags().StringVar(&apiURL, "api-url", "", "Media host API URL (overrides config)")
	mediaWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Media host API key (overrides config)")

	workerCmd.AddCommand(mediaWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
