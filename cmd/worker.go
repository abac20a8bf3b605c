package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	invoicepkg "github.com/coloradoleasecheck/leasecheck/internal/invoice"
	invoicepostgres "github.com/coloradoleasecheck/leasecheck/internal/invoice/postgres"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background worker pools",
	Long:  `Start background workers, currently the pending-invoice re-render pool.`,
}

var invoiceWorkerCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Start the pending-invoice retry pool",
	Long:  `Sweep invoices whose PDF render failed and re-render them until they reach paid.`,
	Run: func(cmd *cobra.Command, args []string) {
		startInvoiceWorker()
	},
}

var (
	sweepInterval time.Duration
	sweepBatch    int
	sweepWorkers  int
)

func init() {
	invoiceWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", time.Minute, "how often to sweep for pending invoices")
	invoiceWorkerCmd.Flags().IntVar(&sweepBatch, "batch", 20, "max pending invoices per sweep")
	invoiceWorkerCmd.Flags().IntVar(&sweepWorkers, "workers", 4, "render worker count")

	workerCmd.AddCommand(invoiceWorkerCmd)
}

func startInvoiceWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	invoiceRepo := invoicepostgres.NewInvoiceRepository(gormDB)
	renderer := invoicepkg.NewPDFRenderer(cfg.Storage.InvoiceDir)
	invoiceService := invoicepkg.NewInvoiceService(invoiceRepo, renderer, log)

	pool := invoicepkg.NewRetryPool(invoiceService, invoicepkg.RetryPoolConfig{
		Interval:   sweepInterval,
		BatchSize:  sweepBatch,
		MaxWorkers: sweepWorkers,
	}, log)

	log.Info("invoice retry pool started",
		"interval", sweepInterval,
		"batch", sweepBatch,
		"workers", sweepWorkers)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Info("shutting down invoice retry pool", "signal", sig)
	pool.Shutdown()
}
