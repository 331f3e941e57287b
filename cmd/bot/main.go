// Package main runs the swap bot: Telegram long polling, the guided swap
// dialog, and swap execution through Jupiter, with optional PostgreSQL /
// ClickHouse persistence for wallets, trades, and quote history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-swap-bot/internal/bot"
	"solana-swap-bot/internal/jupiter"
	"solana-swap-bot/internal/observability"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/storage"
	chstore "solana-swap-bot/internal/storage/clickhouse"
	"solana-swap-bot/internal/storage/memory"
	"solana-swap-bot/internal/storage/migrations"
	pgstore "solana-swap-bot/internal/storage/postgres"
	"solana-swap-bot/internal/swap"
	"solana-swap-bot/internal/telegram"
	"solana-swap-bot/internal/wallet"
)

// allStores holds the storage implementations in use.
type allStores struct {
	walletStore       storage.WalletStore
	tradeRecordStore  storage.TradeRecordStore
	quoteHistoryStore storage.QuoteHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	botToken := flag.String("bot-token", os.Getenv("BOT_TOKEN"), "Telegram bot token")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_ENDPOINT", "https://api.mainnet-beta.solana.com"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (enables cached balance updates)")
	jupiterURL := flag.String("jupiter-url", envOr("JUPITER_API_URL", "https://quote-api.jup.ag/v6"), "Jupiter API base URL")
	walletKey := flag.String("wallet-key", os.Getenv("WALLET_PRIVATE_KEY"), "Base58 secret key of a single shared wallet")
	passphrase := flag.String("wallet-passphrase", os.Getenv("WALLET_PASSPHRASE"), "Passphrase encrypting per-user wallets at rest")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	slippageBps := flag.Int("slippage-bps", 50, "Swap slippage tolerance in basis points")
	platformFeeBps := flag.Int("platform-fee-bps", 0, "Platform fee in basis points, 0 disables")
	platformFeeAccount := flag.String("platform-fee-account", os.Getenv("PLATFORM_FEE_ACCOUNT"), "Token account receiving the platform fee")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lshortfile)

	if *botToken == "" {
		logger.Fatal("--bot-token is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Pick the credential source. A missing wallet is not fatal: swaps fail
	// per session with a configuration error while the rest of the bot runs.
	source, storeSource, staticAddr, err := createSource(*walletKey, *passphrase, stores)
	if err != nil {
		logger.Fatalf("Failed to configure wallet source: %v", err)
	}
	if staticAddr != "" {
		logger.Printf("Using shared wallet %s", staticAddr)
	}

	metrics := observability.NewMetrics("")

	// RPC connectivity check, informational only
	rpc := solana.NewHTTPClient(*rpcEndpoint)
	if slot, err := rpc.GetSlot(ctx); err != nil {
		logger.Printf("WARNING: RPC endpoint check failed: %v", err)
	} else {
		logger.Printf("Connected to RPC endpoint, current slot %d", slot)
	}

	// Telegram client, token check is fatal
	tg := telegram.NewClient(*botToken)
	me, err := tg.GetMe(ctx)
	if err != nil {
		logger.Fatalf("Telegram token check failed: %v", err)
	}
	logger.Printf("Running as @%s", me.Username)
	if err := tg.SetMyCommands(ctx, bot.Commands); err != nil {
		logger.Printf("WARNING: failed to publish command menu: %v", err)
	}

	// Balance watcher only makes sense with a single shared wallet.
	var watcher *solana.BalanceWatcher
	if *wsEndpoint != "" && staticAddr != "" {
		watcher = solana.NewBalanceWatcher(*wsEndpoint, staticAddr, nil)
		go watcher.Run(ctx)
		logger.Printf("Watching balance of %s over WebSocket", staticAddr)
	}

	// Swap pipeline: Jupiter quote/build, local signing, RPC submission
	var jupiterOpts []jupiter.ClientOption
	if *platformFeeBps > 0 && *platformFeeAccount != "" {
		jupiterOpts = append(jupiterOpts, jupiter.WithPlatformFee(*platformFeeBps, *platformFeeAccount))
	}
	jupiterClient := jupiter.NewClient(*jupiterURL, jupiterOpts...)
	executor := jupiter.NewExecutor(jupiterClient, rpc, jupiter.WithSlippageBps(*slippageBps))

	guard := bot.NewGuard(tg, bot.WithGuardMetrics(metrics))
	orchestrator := swap.New(source, executor, guard,
		swap.WithTradeStore(stores.tradeRecordStore),
		swap.WithRPC(rpc),
		swap.WithMetrics(metrics),
	)
	machine := bot.NewMachine(guard, orchestrator,
		bot.WithQuotePreview(jupiterClient, stores.quoteHistoryStore),
	)

	cfg := bot.Config{
		Guard:    guard,
		Machine:  machine,
		Sessions: bot.NewSessionStore(metrics),
		Source:   source,
		RPC:      rpc,
		Watcher:  watcher,
		Metrics:  metrics,
	}
	if storeSource != nil {
		cfg.Provisioner = storeSource
	}
	b := bot.New(cfg)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	// Health and metrics endpoint
	go startHTTPServer(logger, *metricsAddr)

	logger.Println("Polling for updates...")
	if err := telegram.NewPoller(tg, b).Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Poller error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores creates the storage implementations, running migrations for
// whichever databases are configured. Absent databases fall back to memory.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	stores := &allStores{
		walletStore:       memory.NewWalletStore(),
		tradeRecordStore:  memory.NewTradeRecordStore(),
		quoteHistoryStore: memory.NewQuoteHistoryStore(),
	}
	cleanup := func() {}
	if useMemory {
		return stores, cleanup, nil
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.walletStore = pgstore.NewWalletStore(pool)
		stores.tradeRecordStore = pgstore.NewTradeRecordStore(pool)
		cleanup = pool.Close
	}

	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.quoteHistoryStore = chstore.NewQuoteHistoryStore(conn)
		pgCleanup := cleanup
		cleanup = func() {
			conn.Close()
			pgCleanup()
		}
	}

	return stores, cleanup, nil
}

// createSource picks the credential source: a shared wallet from the
// environment, per-user encrypted wallets from storage, or nothing — in
// which case swaps report a configuration error at runtime. storeSource is
// non-nil only in the per-user case, where it doubles as the /start wallet
// provisioner.
func createSource(walletKey, passphrase string, stores *allStores) (wallet.Source, *wallet.StoreSource, string, error) {
	if walletKey != "" {
		src, err := wallet.NewStaticSource(walletKey)
		if err != nil {
			return nil, nil, "", fmt.Errorf("decode wallet key: %w", err)
		}
		return src, nil, src.PublicKey(), nil
	}

	if passphrase != "" {
		cipher, err := wallet.NewCipher(passphrase)
		if err != nil {
			return nil, nil, "", fmt.Errorf("derive wallet cipher: %w", err)
		}
		src := wallet.NewStoreSource(stores.walletStore, cipher)
		return src, src, "", nil
	}

	return wallet.EmptySource{}, nil, "", nil
}

// startHTTPServer serves health and Prometheus metrics.
func startHTTPServer(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("HTTP server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
