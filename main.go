package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KNICEX/trade-alert/internal/repo"
	"github.com/KNICEX/trade-alert/internal/schedule"
	"github.com/KNICEX/trade-alert/internal/service/market/binance"
	"github.com/KNICEX/trade-alert/internal/service/monitor"
	"github.com/KNICEX/trade-alert/ioc"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func initViper() {
	viper.SetConfigFile("./config/config.yaml")
	// 配置文件可选, 所有配置都能用环境变量覆盖
	_ = viper.ReadInConfig()

	viper.SetDefault("db.path", "tradealert.db")
	viper.SetDefault("monitor.check_interval", 300)
	viper.SetDefault("monitor.price_change_threshold", 0.02)

	envBinds := map[string]string{
		"db.path":                        "DB_PATH",
		"monitor.check_interval":         "CHECK_INTERVAL",
		"monitor.price_change_threshold": "PRICE_CHANGE_THRESHOLD",
		"notify.email.host":              "SMTP_SERVER",
		"notify.email.port":              "SMTP_PORT",
		"notify.email.username":          "SMTP_USERNAME",
		"notify.email.password":          "SMTP_PASSWORD",
		"notify.email.to":                "NOTIFICATION_EMAIL",
		"notify.telegram.token":          "TELEGRAM_BOT_TOKEN",
		"notify.telegram.chat_id":        "TELEGRAM_CHAT_ID",
	}
	for key, env := range envBinds {
		if err := viper.BindEnv(key, env); err != nil {
			panic(err)
		}
	}
}

func usage() {
	fmt.Println("usage: trade-alert <command>")
	fmt.Println("  start                                 run the monitoring loop")
	fmt.Println("  add --symbol S [--upper U] [--lower L]  add or update a monitor")
	fmt.Println("  remove --symbol S                     remove a monitor")
	fmt.Println("  list                                  list active monitors")
}

func parseBound(fs *pflag.FlagSet, value, name string) decimal.NullDecimal {
	if value == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(value)
	if err != nil || !d.IsPositive() {
		fmt.Printf("invalid --%s value: %s\n", name, value)
		fs.Usage()
		os.Exit(1)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func main() {
	initViper()

	if len(os.Args) < 2 {
		usage()
		return
	}

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	monitorRepo := repo.NewMonitorRepo(db)
	alertRepo := repo.NewAlertRepo(db)
	dataSvc := binance.NewDataService(ioc.InitBinanceCli())

	ctx := context.Background()

	switch os.Args[1] {
	case "start":
		notifier := ioc.InitNotifier()
		if err := notifier.NotifyTest(ctx); err != nil {
			slog.Warn("notification test failed", "error", err)
		} else {
			slog.Info("notification test ok")
		}

		svc := monitor.NewService(monitorRepo, alertRepo, dataSvc,
			monitor.WithNotifier(notifier),
			monitor.WithChangeThreshold(decimal.NewFromFloat(viper.GetFloat64("monitor.price_change_threshold"))),
		)
		interval := time.Duration(viper.GetInt("monitor.check_interval")) * time.Second
		runner := schedule.NewIntervalRunner(monitor.NewCheckTask(svc), interval)

		runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := runner.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			panic(err)
		}

	case "add":
		fs := pflag.NewFlagSet("add", pflag.ExitOnError)
		symbol := fs.String("symbol", "", "ticker symbol")
		upper := fs.String("upper", "", "upper price bound")
		lower := fs.String("lower", "", "lower price bound")
		_ = fs.Parse(os.Args[2:])
		if *symbol == "" {
			fs.Usage()
			os.Exit(1)
		}

		svc := monitor.NewService(monitorRepo, alertRepo, dataSvc)
		err := svc.AddMonitor(ctx, *symbol, parseBound(fs, *upper, "upper"), parseBound(fs, *lower, "lower"))
		if err != nil {
			fmt.Printf("failed to add monitor %s: %v\n", *symbol, err)
			os.Exit(1)
		}
		fmt.Printf("monitor added: %s\n", *symbol)

	case "remove":
		fs := pflag.NewFlagSet("remove", pflag.ExitOnError)
		symbol := fs.String("symbol", "", "ticker symbol")
		_ = fs.Parse(os.Args[2:])
		if *symbol == "" {
			fs.Usage()
			os.Exit(1)
		}

		svc := monitor.NewService(monitorRepo, alertRepo, dataSvc)
		ok, err := svc.RemoveMonitor(ctx, *symbol)
		if err != nil {
			fmt.Printf("failed to remove monitor %s: %v\n", *symbol, err)
			os.Exit(1)
		}
		if !ok {
			fmt.Printf("no such monitor: %s\n", *symbol)
			os.Exit(1)
		}
		fmt.Printf("monitor removed: %s\n", *symbol)

	case "list":
		svc := monitor.NewService(monitorRepo, alertRepo, dataSvc)
		monitors, err := svc.ListMonitors(ctx)
		if err != nil {
			fmt.Printf("failed to list monitors: %v\n", err)
			os.Exit(1)
		}
		if len(monitors) == 0 {
			fmt.Println("no active monitors")
			return
		}
		fmt.Printf("%-10s %-12s %-12s %-20s\n", "SYMBOL", "UPPER", "LOWER", "UPDATED")
		for _, m := range monitors {
			fmt.Printf("%-10s %-12s %-12s %-20s\n",
				m.Symbol, boundString(m.UpperPrice), boundString(m.LowerPrice),
				m.UpdatedAt.Format(time.DateTime))
		}

	default:
		usage()
		os.Exit(1)
	}
}

func boundString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "N/A"
	}
	return d.Decimal.String()
}
