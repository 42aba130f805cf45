// Command planner runs the clinker network planning pipeline: either a
// single workbook solve from the command line, or — with NATS enabled — a
// long-running worker that consumes plan requests off the queue.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pinggolf/clinker-planner/internal/config"
	"github.com/pinggolf/clinker-planner/internal/planner"
	"github.com/pinggolf/clinker-planner/internal/queue"
	"github.com/pinggolf/clinker-planner/internal/solve"
	"github.com/pinggolf/clinker-planner/internal/store"
	"github.com/pinggolf/clinker-planner/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations(cfg)
		return
	}

	if cfg.NATSEnabled {
		runWorker(cfg)
		return
	}

	runOnce(cfg)
}

// runOnce loads a single workbook, runs one solve, and prints the result.
func runOnce(cfg *config.Config) {
	workbook := flag.String("workbook", cfg.WorkbookPath, "path to the input Excel workbook")
	flag.Parse()

	if *workbook == "" {
		log.Fatal("no workbook path given: set WORKBOOK_PATH or pass -workbook")
	}

	session := planner.New(planner.Config{
		Solve: solve.Options{
			TimeLimit:   cfg.SolveTimeLimit,
			RelativeGap: cfg.SolveRelativeGap,
			Threads:     cfg.SolveThreads,
		},
		EnableFallback:    cfg.EnableFallback,
		EmergencyUnitCost: cfg.EmergencyUnitCost,
		RunChecks:         cfg.RunDiagnosticChecks,
	})

	result, err := session.RunWorkbook(context.Background(), *workbook)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}

	log.Printf("status=%s", result.Status)
	if result.TotalCost != nil {
		log.Printf("total_cost=%.2f (production=%.2f transport=%.2f holding=%.2f)",
			*result.TotalCost, result.CostBreakdown.Production, result.CostBreakdown.Transport, result.CostBreakdown.Holding)
	}
	if result.Message != "" {
		log.Printf("message: %s", result.Message)
	}
	for _, t := range result.ScheduledTrips {
		log.Printf("period=%d route=%s mode=%s trips=%d qty=%.2f", t.Period, t.RouteID, t.Mode, t.NumTrips, t.QuantityShipped)
	}
}

// runWorker opens the database and NATS connections and runs the async
// plan-worker loop until interrupted.
func runWorker(cfg *config.Config) {
	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	database.SetMaxOpenConns(cfg.DatabaseMaxConnections)
	database.SetMaxIdleConns(cfg.DatabaseMaxIdleConnections)
	database.SetConnMaxLifetime(cfg.DatabaseConnectionLifetime)

	if err := database.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}
	log.Println("database connection established")

	st := store.New(database)

	if cfg.RunMigrations {
		log.Println("running database migrations...")
		if err := st.RunMigrations(context.Background(), "internal/store/migrations"); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	natsManager, err := queue.NewManager(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	defer natsManager.Close()
	log.Println("NATS connection established")

	planWorker := worker.NewPlanWorker(natsManager, st, cfg)
	if err := planWorker.Start(); err != nil {
		log.Fatalf("failed to start plan worker: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down plan worker...")
}

func runMigrations(cfg *config.Config) {
	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("running database migrations...")
	if err := store.New(database).RunMigrations(context.Background(), "internal/store/migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("migrations completed successfully")
}
