package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/clodobox/EventGear/internal/config"
	"github.com/clodobox/EventGear/internal/core/container"
	"github.com/clodobox/EventGear/internal/core/routes"
	"github.com/clodobox/EventGear/internal/database"
	"github.com/clodobox/EventGear/internal/database/migration"
	"github.com/clodobox/EventGear/internal/logger"
	"github.com/clodobox/EventGear/internal/middleware"
	"github.com/clodobox/EventGear/pkg/security"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.MigrationsDir
		}

		if err := migration.Migrate(cfg.DatabaseURL, fmt.Sprintf("file://%s", dir), logger.NewLogger(cfg.LogLevel)); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a JWT for operational use.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}

		user, _ := cmd.Flags().GetString("user")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := security.GenerateToken([]byte(cfg.JWTSecret), user, role, ttl)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EventGear API server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.NewLogger(cfg.LogLevel)
		defer log.Sync()

		db, err := database.NewPostgresConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("Connected to the database")

		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				if err := db.Ping(); err != nil {
					middleware.UpdateHealthStatus("degraded")
					log.Warn("Database ping failed", zap.Error(err))
				} else {
					middleware.UpdateHealthStatus("ok")
				}
			}
		}()

		var rdb *redis.Client
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("invalid REDIS_URL: %w", err)
			}
			rdb = redis.NewClient(opts)
			defer rdb.Close()
			log.Info("Availability cache enabled", zap.String("redis", opts.Addr))
		}

		appContainer := container.NewAppContainer(db, rdb, cfg)

		router := gin.New()
		router.Use(gin.Logger())
		router.Use(middleware.RecoveryMiddleware(log))
		router.Use(cors.Default())

		routes.Register(router, appContainer, cfg.JWTSecret, log)

		log.Info("Starting server", zap.String("addr", cfg.ListenAddr))
		return router.Run(cfg.ListenAddr)
	},
}

func Execute() {
	rootCmd := &cobra.Command{
		Use:   "eventgear",
		Short: "EventGear equipment allocation service",
	}
	migrateCmd.Flags().String("dir", "", "Directory containing the migration files")
	tokenCmd.Flags().String("user", "ops", "Subject user id for the token")
	tokenCmd.Flags().String("role", "admin", "Role claim (viewer, manager or admin)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
