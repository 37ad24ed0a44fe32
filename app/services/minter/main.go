package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/memechain/minter/app/services/minter/handlers"
	"github.com/memechain/minter/business/core/chain"
	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/business/core/chain/db/storage"
	"github.com/memechain/minter/business/sys/gateway"
	"github.com/memechain/minter/foundation/events"
	"github.com/memechain/minter/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("MINTER")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
		}
		Chain struct {
			DBPath          string        `conf:"default:zchain/data"`
			BlockInterval   time.Duration `conf:"default:15m"`
			HalvingPeriod   time.Duration `conf:"default:6912h"`
			InitBlockReward uint64        `conf:"default:5000000000"`
			TeamFeePct      uint64        `conf:"default:2000000"`
			TreasuryFeePct  uint64        `conf:"default:1000000"`
			RewardTiers     []string      `conf:"default:50000000;30000000;20000000"`
			MaxRaffleOwners int           `conf:"default:10"`
			AdminPrincipal  string        `conf:"default:2vxsx-fae"`
			OwnPrincipal    string        `conf:"default:minter-service"`
		}
		Gateway struct {
			NFTURL  string `conf:"default:http://0.0.0.0:8180/api"`
			CoinURL string `conf:"default:http://0.0.0.0:8280/api"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "MINTER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	rewardTiers, err := parseTiers(cfg.Chain.RewardTiers)
	if err != nil {
		return fmt.Errorf("parsing reward tiers: %w", err)
	}

	// =========================================================================
	// Chain Store Support

	// Access the durable storage and restore the committed chain.
	strg, err := storage.NewDisk(cfg.Chain.DBPath)
	if err != nil {
		return fmt.Errorf("opening chain storage: %w", err)
	}

	store, err := db.New(strg)
	if err != nil {
		return fmt.Errorf("restoring chain store: %w", err)
	}
	defer store.Close()

	ch := store.Chain()
	log.Infow("startup", "status", "chain restored", "height", ch.Height, "lastBlockID", ch.LastBlockID, "cursor", ch.NextLogCursor)

	// =========================================================================
	// External Ledger Support

	gw, err := gateway.New(gateway.Config{
		NFTURL:  cfg.Gateway.NFTURL,
		CoinURL: cfg.Gateway.CoinURL,
	})
	if err != nil {
		return fmt.Errorf("constructing ledger gateway: %w", err)
	}

	// =========================================================================
	// Chain Service Support

	// The chain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	service, err := chain.New(chain.Config{
		Store:        store,
		NFT:          gw,
		Coin:         gw,
		EvHandler:    ev,
		AdminAccount: db.Account{Owner: cfg.Chain.AdminPrincipal},
		TreasuryAccount: db.Account{
			Owner:      cfg.Chain.OwnPrincipal,
			SubAccount: db.SubAccountFromText("TREASURY_SUBACCOUNT"),
		},
		TeamFeePct:      cfg.Chain.TeamFeePct,
		TreasuryFeePct:  cfg.Chain.TreasuryFeePct,
		RewardTiers:     rewardTiers,
		InitBlockReward: cfg.Chain.InitBlockReward,
		BlockInterval:   cfg.Chain.BlockInterval,
		HalvingPeriod:   cfg.Chain.HalvingPeriod,
		MaxRaffleOwners: cfg.Chain.MaxRaffleOwners,
	})
	if err != nil {
		return fmt.Errorf("constructing chain service: %w", err)
	}

	// The scheduler runs settlement cycles on the block interval and halts
	// on a failed cycle rather than risking the chain bookkeeping.
	sched := chain.NewScheduler(service, cfg.Chain.BlockInterval, ev)
	sched.Start()
	defer sched.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux()); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Service:  service,
		Sched:    sched,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Service:  service,
		Sched:    sched,
	})

	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// parseTiers converts the configured reward tier percentages.
func parseTiers(tiers []string) ([]uint64, error) {
	parsed := make([]uint64, len(tiers))
	for i, tier := range tiers {
		v, err := strconv.ParseUint(tier, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", tier, err)
		}
		parsed[i] = v
	}
	return parsed, nil
}
