package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commentguesser/backend/internal/config"
	"github.com/commentguesser/backend/internal/database"
	"github.com/commentguesser/backend/internal/game"
	"github.com/commentguesser/backend/internal/logging"
	"github.com/commentguesser/backend/internal/server"
	"github.com/commentguesser/backend/internal/youtube"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	stockDays int
	stockSize int
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "commentguesser-api",
		Short: "CommentGuesser backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	stockCmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock the daily round pool ahead of time",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStock(cmd.Context())
		},
	}
	stockCmd.Flags().IntVar(&stockDays, "days", 7, "Number of days to stock, starting today")
	stockCmd.Flags().IntVar(&stockSize, "size", 20, "Target pool size per day")
	rootCmd.AddCommand(stockCmd)

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("youtube-api-key", "", "YouTube Data API key (overrides env)")
	cmd.PersistentFlags().String("youtube-base-url", defaults.GetString("youtube.base_url"), "YouTube Data API base URL")
	cmd.PersistentFlags().Int("pool-target-size", defaults.GetInt("pool.target_size"), "Rounds to keep stocked per day")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "youtube.api_key", "youtube-api-key")
	bindFlag(cmd, "youtube.base_url", "youtube-base-url")
	bindFlag(cmd, "pool.target_size", "pool-target-size")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func buildGameService(appConfig config.AppConfig, logger *zap.Logger) (*game.Service, func() error, error) {
	db, err := database.Open(appConfig.DatabasePath, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	source, err := youtube.NewClient(youtube.ClientConfig{
		APIKey:  appConfig.YouTubeAPIKey,
		BaseURL: appConfig.YouTubeBaseURL,
		Logger:  logger,
	})
	if err != nil {
		sqlDB.Close() //nolint:errcheck
		return nil, nil, err
	}

	gameService, err := game.NewService(game.ServiceConfig{
		Database:   db,
		Source:     source,
		IDProvider: game.NewUUIDProvider(),
		PoolTarget: appConfig.PoolTargetSize,
		Logger:     logger,
	})
	if err != nil {
		sqlDB.Close() //nolint:errcheck
		return nil, nil, err
	}

	return gameService, sqlDB.Close, nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	gameService, closeDB, err := buildGameService(appConfig, logger)
	if err != nil {
		return err
	}
	defer closeDB() //nolint:errcheck

	handler, err := server.NewHTTPHandler(server.Dependencies{
		GameService: gameService,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runStock fills the pool for consecutive days starting today, so quota-heavy
// generation can happen off the request path. Failed days are logged and
// skipped rather than aborting the run.
func runStock(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	gameService, closeDB, err := buildGameService(appConfig, logger)
	if err != nil {
		return err
	}
	defer closeDB() //nolint:errcheck

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now().UTC()
	logger.Info("stocking daily pools",
		zap.Int("days", stockDays),
		zap.Int("target_size", stockSize))

	for i := 0; i < stockDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		if err := gameService.PopulateDailyPool(signalCtx, day, stockSize); err != nil {
			logger.Error("failed to stock day", zap.String("day", day), zap.Error(err))
		} else {
			logger.Info("day stocked", zap.String("day", day))
		}

		if i == stockDays-1 {
			break
		}
		select {
		case <-signalCtx.Done():
			return signalCtx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	logger.Info("stocking complete")
	return nil
}
