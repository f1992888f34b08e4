package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cppla/maeum/config"
	"github.com/cppla/maeum/middleware"
	"github.com/cppla/maeum/routes"
	"github.com/cppla/maeum/services"
	"github.com/cppla/maeum/store"
	"github.com/cppla/maeum/utils"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "maeum",
		Short:         "Daily emotional wellness backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newResetMissionsCommand(), newTokenCommand())
	return root
}

// runtime is everything a command needs after boot.
type runtime struct {
	cfg    config.AppConfig
	db     *gorm.DB
	rc     *redis.Client
	stores store.Stores
	svcs   *services.Services
}

func (rt *runtime) Close() {
	if rt.rc != nil {
		_ = rt.rc.Close()
	}
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = utils.Logger.Sync()
}

func boot() (*runtime, error) {
	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &runtime{cfg: cfg}
	if cfg.Driver == config.DriverMemory {
		utils.Sugar.Warn("using in-memory storage, data is lost on restart")
		rt.stores = store.NewMemoryStores()
	} else {
		db, err := config.OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}
		if err := config.Migrate(db, store.AllModels()...); err != nil {
			return nil, err
		}
		rt.db = db
		rt.stores = store.NewGormStores(db)
	}

	rt.rc = utils.NewRedis(cfg)
	var locker services.Locker
	if rt.rc != nil {
		locker = services.NewRedisLocker(rt.rc, 10*time.Second, 5*time.Second)
	}

	rt.svcs = services.New(services.Deps{
		Stores:    rt.stores,
		Locker:    locker,
		Clock:     services.NewSystemClock(cfg.Location()),
		Responder: services.NewChatResponder(cfg.CoachBaseURL, cfg.CoachAPIKey, cfg.CoachModel, cfg.CoachTimeout),
		Cache:     utils.NewCache(rt.rc),
		CoachSeed: cfg.CoachSeed,
	})
	return rt, nil
}

func newVerifier(ctx context.Context, cfg config.AppConfig) (middleware.TokenVerifier, error) {
	if cfg.FirebaseProjectID != "" {
		return middleware.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	}
	utils.Sugar.Info("firebase not configured, accepting HS256 tokens")
	return middleware.JWTVerifier{Secret: cfg.JWTSecret}, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := boot()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()

			verifier, err := newVerifier(ctx, rt.cfg)
			if err != nil {
				return err
			}
			var metrics *middleware.Metrics
			if rt.cfg.MetricsEnabled {
				metrics = middleware.NewMetrics()
			}

			services.NewMissionResetJob(rt.svcs.Missions, rt.svcs.Clock, rt.rc, rt.cfg.MissionResetInterval).Start(ctx)

			r := routes.SetupRouter(rt.cfg, rt.svcs, verifier, metrics)
			utils.Sugar.Infof("Starting server on port %s (graceful)", rt.cfg.AppPort)
			if err := utils.GraceServer(ctx, ":"+rt.cfg.AppPort, r, stop); err != nil {
				utils.Sugar.Errorf("server stopped with error: %v", err)
				return err
			}
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := boot()
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.db == nil {
				utils.Sugar.Info("memory driver has nothing to migrate")
				return nil
			}
			utils.Sugar.Infow("migration complete", "driver", rt.cfg.Driver)
			return nil
		},
	}
}

func newResetMissionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-missions",
		Short: "Reset completed recurring missions from earlier days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := boot()
			if err != nil {
				return err
			}
			defer rt.Close()
			users, n, err := rt.svcs.Missions.ResetAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d missions for %d users\n", n, users)
			return nil
		},
	}
}

func newTokenCommand() *cobra.Command {
	var name string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an HS256 token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			tok, err := utils.GenerateToken(cfg.JWTSecret, args[0], name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
