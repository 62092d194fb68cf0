package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/ynabsync/pkg/config"
	"github.com/yurifrl/ynabsync/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "ynabsync",
	})

	flags := pflag.NewFlagSet("ynabsync-server", pflag.ExitOnError)
	port := flags.String("port", "3000", "Server port")
	cfgFile := flags.StringP("config", "c", "", "Config file (default is config.yaml)")
	flags.String("budget", "", "Default YNAB budget id")
	flags.StringSlice("years", nil, "Default year prefixes to reconcile")
	flags.Bool("strict", false, "Fail when a fingerprint is carried by several transactions")
	flags.String("log-level", "info", "Log level")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	// the server only replays through the API
	cfg.Backend = config.BackendAPI

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	srv := server.New(cfg, logger)
	addr := fmt.Sprintf("0.0.0.0:%s", *port)
	logger.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
