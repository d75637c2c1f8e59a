package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/snagtrack/snagtrack/internal/api"
	"github.com/snagtrack/snagtrack/internal/attachment"
	"github.com/snagtrack/snagtrack/internal/config"
	"github.com/snagtrack/snagtrack/internal/db"
	"github.com/snagtrack/snagtrack/internal/notify"
	"github.com/snagtrack/snagtrack/internal/obs"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Snagtrack API server",
		Long:  "Starts the HTTP API and the daily digest scheduler. Stops cleanly on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "snagtrack.yaml", "path to Snagtrack config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Database)
	if err != nil {
		return err
	}

	store, err := attachment.NewDiskStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	obs.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(notifier) > 0 {
		go notify.RunDigest(ctx, gormDB, notifier, cfg.Notify.DigestCron)
	}

	return api.Start(ctx, api.StartOpts{
		DB:        gormDB,
		Port:      cfg.Server.Port,
		JWTSecret: cfg.Auth.JWTSecret,
		Store:     store,
		Notifier:  notifier,
		Out:       out,
	})
}

// buildNotifier assembles the configured notification channels.
func buildNotifier(cfg *config.Config) (notify.Multi, error) {
	var m notify.Multi
	if cfg.Notify.SlackToken != "" {
		m = append(m, notify.NewSlackNotifier(cfg.Notify.SlackToken, cfg.Notify.SlackChannel))
	}
	if cfg.Notify.DiscordToken != "" {
		dn, err := notify.NewDiscordNotifier(cfg.Notify.DiscordToken, cfg.Notify.DiscordChannel)
		if err != nil {
			return nil, err
		}
		m = append(m, dn)
	}
	return m, nil
}
