package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rephrasecoach/config"
	"rephrasecoach/internal/flow"
	"rephrasecoach/internal/logger"
	"rephrasecoach/internal/tracing"
	"rephrasecoach/models"
	"rephrasecoach/routes"
	"rephrasecoach/services"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rephrase-coach",
	Short: "Speaking-exam rephrasing practice server",
	Long: `rephrase-coach serves a practice page and a JSON API that ask a hosted
language model for feedback on three rewrites of a challenge sentence, or for
direct model rewrites of any sentence.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Print the built-in challenge sentences",
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, c := range services.DefaultChallengeBank().All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, c)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config/config.yml", "Path to the YAML config file (optional)")
	rootCmd.AddCommand(challengesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	completer, err := services.NewCompleter(ctx, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to initialize model client: %w", err)
	}
	if c, ok := completer.(io.Closer); ok {
		defer c.Close()
	}

	bank := services.DefaultChallengeBank()
	coach := services.NewCoachService(completer, bank, cfg.Topics, log)

	shape, err := models.ParseResponseShape(cfg.Feedback.Shape)
	if err != nil {
		return err
	}
	policy := flow.Policy{RetainResultOnFailure: cfg.Feedback.RetainResultOnFailure()}
	store := flow.NewStore(cfg.Session.TTL, func(id string) *flow.Session {
		return flow.NewSession(id, bank.Random(), flow.PracticeConfig(shape), flow.DirectConfig(), policy)
	})

	router, err := routes.NewRouter(routes.Deps{Config: cfg, Coach: coach, Store: store, Log: log})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", srv.Addr, "provider", cfg.LLM.Provider, "shape", shape)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := store.Prune(); n > 0 {
					log.Debug("expired sessions pruned", "count", n, "live", store.Len())
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return shutdownTracing(shutdownCtx)
	})
	return g.Wait()
}
