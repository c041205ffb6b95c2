// Command solanidd runs the identity-attestation registry as a
// standalone HTTP service: load config, open the account store, wire
// the engine to its HTTP surface, serve until signaled to stop.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/solanid/solanid-core/internal/config"
	"github.com/solanid/solanid-core/internal/engine"
	"github.com/solanid/solanid-core/internal/locks"
	"github.com/solanid/solanid-core/internal/metrics"
	"github.com/solanid/solanid-core/internal/pdaddr"
	"github.com/solanid/solanid-core/internal/rpcserver"
	"github.com/solanid/solanid-core/internal/store"
	"github.com/solanid/solanid-core/internal/store/auditpg"
	"github.com/solanid/solanid-core/internal/store/cometkv"
	"github.com/solanid/solanid-core/internal/store/memkv"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	kv, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	eng := engine.New(kv)

	if cfg.BootstrapFile != "" {
		if err := maybeBootstrap(eng, kv, cfg.BootstrapFile); err != nil {
			log.Fatalf("bootstrap registry: %v", err)
		}
	}

	reg := prometheus.NewRegistry()
	metricsRegistry := metrics.NewRegistry(reg)
	lockManager := locks.NewManager()

	logger := log.New(os.Stderr, "[solanidd] ", log.LstdFlags)
	handlers := rpcserver.New(eng, lockManager, metricsRegistry, reg, logger)

	if cfg.AuditDSN != "" {
		sink, err := auditpg.Open(cfg.AuditDSN, cfg.AuditMaxOpenConns, cfg.AuditMaxIdleConns)
		if err != nil {
			log.Fatalf("open audit sink: %v", err)
		}
		defer sink.Close()
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := sink.MigrateUp(migrateCtx); err != nil {
			cancel()
			log.Fatalf("migrate audit log: %v", err)
		}
		cancel()
		handlers.WithAudit(sink)
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handlers.Routes(),
	}

	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
}

// openStore constructs the configured KV backend plus its close func.
func openStore(cfg *config.Config) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendCometDB:
		kv, err := cometkv.Open("solanid", cfg.DataDir, dbm.GoLevelDBBackend)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {
			if err := kv.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}, nil
	default:
		return memkv.New(), func() {}, nil
	}
}

// maybeBootstrap seeds a fresh registry from a YAML bootstrap file,
// skipping entirely once a registry already exists so restarts never
// clobber live policy knobs.
func maybeBootstrap(eng *engine.Engine, kv store.KV, path string) error {
	addr, _, err := pdaddr.Registry()
	if err != nil {
		return err
	}
	existing, err := kv.Has(addr.Bytes())
	if err != nil {
		return err
	}
	if existing {
		return nil
	}

	bs, err := config.LoadBootstrap(path)
	if err != nil {
		return err
	}

	admin := common.HexToHash(bs.Admin)
	verifierKey := common.HexToHash(bs.VerifierKey)
	_, err = eng.InitializeRegistry(engine.InitializeRegistryArgs{
		Admin:             admin,
		VerifierKey:       verifierKey,
		MinScore:          bs.MinScore,
		CooldownSecs:      bs.CooldownSecs,
		DiversityBonusPct: bs.DiversityBonusPct,
		ProofTTLSecs:      bs.ProofTTLSecs,
	})
	if err != nil {
		return err
	}
	_, err = eng.InitializeScoringConfig(admin)
	return err
}
