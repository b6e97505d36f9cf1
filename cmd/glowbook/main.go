package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glowbooking/glowbook/config"
	"github.com/glowbooking/glowbook/internal/adminapi"
	"github.com/glowbooking/glowbook/internal/app"
	"github.com/glowbooking/glowbook/internal/auth"
	"github.com/glowbooking/glowbook/internal/domain"
	"github.com/glowbooking/glowbook/internal/integrations/places"
	"github.com/glowbooking/glowbook/internal/integrations/square"
	"github.com/glowbooking/glowbook/internal/notify"
	"github.com/glowbooking/glowbook/internal/publicapi"
	"github.com/glowbooking/glowbook/internal/reviews"
	"github.com/glowbooking/glowbook/internal/webserver"
)

var (
	BuildVersion string

	h        = flag.Bool("h", false, "show help")
	v        = flag.Bool("v", false, "show version")
	x        = flag.Bool("x", false, "debug mode")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	conffile = flag.String("c", "/etc/glowbook.yml", "config file")
)

// reminderConfig is decoded from the payment_reminder scheduler row's Config
// JSON.
type reminderConfig struct {
	MaxAgeHours int64 `mapstructure:"max_age_hours"`
}

func decodeReminderConfig(raw string) reminderConfig {
	cfg := reminderConfig{MaxAgeHours: 72}
	if raw == "" {
		return cfg
	}
	var m map[string]interface{}
	if err := jsoniter.UnmarshalFromString(raw, &m); err != nil {
		zap.L().Warn("bad payment_reminder config, using defaults", zap.Error(err))
		return cfg
	}
	if err := mapstructure.Decode(m, &cfg); err != nil {
		zap.L().Warn("bad payment_reminder config, using defaults", zap.Error(err))
	}
	if cfg.MaxAgeHours <= 0 {
		cfg.MaxAgeHours = 72
	}
	return cfg
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *v {
		fmt.Println("glowbook", BuildVersion)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	if *x {
		cfg.System.Debug = true
		cfg.Database.Debug = true
	}
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.DropAll()
		if err := application.MigrateDB(); err != nil {
			zap.L().Fatal("database migration failed", zap.Error(err))
		}
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	ws := webserver.Init(application)
	adminapi.InitRouter()

	reviewSvc := reviews.New(application, places.New(&cfg.Google))
	squareClient := square.New(&cfg.Square)
	publicapi.InitRouter(reviewSvc, squareClient)

	notifySvc, err := notify.New(application)
	if err != nil {
		zap.L().Fatal("notify service init failed", zap.Error(err))
	}
	if err := notifySvc.Start(); err != nil {
		zap.L().Fatal("notify service start failed", zap.Error(err))
	}
	defer notifySvc.Release()

	authSvc := auth.New(application)

	application.RegisterSchedTask(app.TaskGoogleReviewsRefresh,
		func(ctx context.Context, sched *domain.SysScheduler) error {
			return reviewSvc.Refresh(ctx)
		})
	application.RegisterSchedTask(app.TaskPaymentReminder,
		func(ctx context.Context, sched *domain.SysScheduler) error {
			rc := decodeReminderConfig(sched.Config)
			return notifySvc.SendPaymentReminders(ctx, time.Duration(rc.MaxAgeHours)*time.Hour)
		})
	application.RegisterSchedTask(app.TaskTokenCleanup,
		func(ctx context.Context, sched *domain.SysScheduler) error {
			return authSvc.CleanupExpiredTokens(ctx)
		})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.StartSchedulerService(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ws.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server exited", zap.Error(err))
	}
}
