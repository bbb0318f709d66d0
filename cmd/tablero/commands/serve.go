package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/tablero-app/tablero/internal/board"
	"github.com/tablero-app/tablero/internal/codec"
	"github.com/tablero-app/tablero/internal/config"
	"github.com/tablero-app/tablero/internal/gateway"
	"github.com/tablero-app/tablero/internal/httpapi"
	"github.com/tablero-app/tablero/internal/room"
	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/internal/store/memory"
	"github.com/tablero-app/tablero/internal/store/redisstore"
	"github.com/tablero-app/tablero/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the board server",
	Long: `Run the WebSocket gateway and the board REST API.

Configuration comes from TABLERO_* environment variables; see the
package documentation of internal/config for the full list.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stderr, cfg.LogLevel)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Ping(context.Background()); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}

	cd, err := codec.New(cfg.WireFormat)
	if err != nil {
		return err
	}

	coord := board.New(st, log)
	reg := room.NewRegistry()
	disp := room.NewDispatcher(reg, log)

	gw := gateway.NewServer(coord, reg, disp, gateway.Options{
		Addr:   cfg.WSAddr,
		Codec:  cd,
		Logger: log,
	})
	if err := gw.Start(); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}
	log.Info("gateway listening", "addr", gw.Address(), "format", cfg.WireFormat)

	api := httpapi.New(coord, disp, log)
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()
	log.Info("board API listening", "addr", cfg.HTTPAddr, "store", cfg.Store)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-httpErr:
		gw.Stop()
		return fmt.Errorf("board API: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn("board API shutdown", "error", err.Error())
	}
	if err := gw.Stop(); err != nil {
		log.Warn("gateway shutdown", "error", err.Error())
	}
	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case "redis":
		return redisstore.New(&redis.Options{Addr: cfg.RedisAddr}, cfg.RedisNamespace)
	default:
		return memory.New(), nil
	}
}
