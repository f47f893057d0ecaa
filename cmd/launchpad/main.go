package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchpadhq/launchpad/config"
	"github.com/launchpadhq/launchpad/internal/adminapi"
	"github.com/launchpadhq/launchpad/internal/app"
	"github.com/launchpadhq/launchpad/internal/billing"
	"github.com/launchpadhq/launchpad/internal/completion"
	"github.com/launchpadhq/launchpad/internal/ingest"
	"github.com/launchpadhq/launchpad/internal/ledger"
	"github.com/launchpadhq/launchpad/internal/pipeline"
	"github.com/launchpadhq/launchpad/internal/store"
	"github.com/launchpadhq/launchpad/internal/webapi"
	"github.com/launchpadhq/launchpad/internal/webserver"
	"go.uber.org/zap"
)

var (
	h        bool
	initdb   bool
	conffile string
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate all tables, then exit")
	flag.StringVar(&conffile, "c", "launchpad.yml", "config file path")
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.LoadConfig(conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if initdb {
		application.InitDb()
		fmt.Println("database initialized")
		return
	}

	db := application.DB()
	users := store.NewGormUserRepository(db)
	products := store.NewGormProductRepository(db)
	creditLedger := ledger.NewCreditLedger(db)
	generator := completion.NewClient(cfg.Completion)
	orchestrator := pipeline.NewOrchestrator(
		products, creditLedger, generator, application, cfg.GenerationTimeout())
	ingestor := ingest.NewIngestor(products, application.MaxUploadBytes())
	billingService := billing.NewService(cfg.Stripe, db, creditLedger)

	webserver.Init(application)
	webapi.NewHandlers(
		application, users, products, creditLedger, orchestrator, ingestor, billingService).Register()
	adminapi.NewHandlers(application, users, products).Register()

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigc
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
		application.Release()
		os.Exit(0)
	}()

	if err := webserver.Listen(); err != nil {
		zap.L().Fatal("web server exited", zap.Error(err))
	}
}
