// Command hiptail-bot runs a small echo bot. It answers "ping" with "pong",
// repeats whatever follows "echo " and logs topic changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/joho/godotenv"

	hiptailbot "github.com/dayflower/hiptail-bot"
	_ "github.com/dayflower/hiptail-bot/transport/transports"
)

var echoPattern = regexp.MustCompile(`^echo (.*)`)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hiptail-bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a TOML configuration file")
	envFile := flag.String("env-file", ".env", "Dotenv file loaded before reading the environment")
	flag.Parse()

	// A missing dotenv file is fine; the real environment still applies.
	_ = godotenv.Load(*envFile)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := hiptailbot.NewTextLogger(os.Stdout, cfg.LogLevel)
	logger.Info("Configuration loaded", hiptailbot.LogFields{"config": cfg.String()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := hiptailbot.NewBot(hiptailbot.BotDependencies{
		Logger: logger,
		Hooks:  hiptailbot.LoggingHooks(logger),
	})
	defer func() {
		if err := bot.Close(); err != nil {
			logger.Error("Failed to release bot resources", err, nil)
		}
	}()

	if err := bot.ApplyConfig(ctx, cfg); err != nil {
		return err
	}
	if err := registerHooks(bot); err != nil {
		return err
	}

	return bot.Start(ctx, cfg.ListenAddress)
}

func loadConfig(path string) (*hiptailbot.Config, error) {
	cfg := hiptailbot.DefaultConfig()
	if path != "" {
		loaded, err := hiptailbot.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if cfg.Key == "" {
		cfg.Key = "hiptail-echo-bot"
	}
	if cfg.Name == "" {
		cfg.Name = "Echo Bot"
	}
	return cfg, nil
}

func registerHooks(bot *hiptailbot.Bot) error {
	if err := bot.OnInstalled(func(_ context.Context, hc hiptailbot.HookContext[hiptailbot.Authority]) (hiptailbot.Result, error) {
		hc.Logger.Info("Installed", hiptailbot.LogFields{
			"oauth_id": hc.Event.OAuthID,
			"room_id":  hc.Event.RoomID,
		})
		return hiptailbot.Continue(nil), nil
	}); err != nil {
		return err
	}

	if err := bot.OnMessage("ping", func(context.Context, hiptailbot.HookContext[*hiptailbot.RoomMessageEvent]) (hiptailbot.Result, error) {
		return hiptailbot.Continue(hiptailbot.TextReply("pong")), nil
	}); err != nil {
		return err
	}

	if err := bot.OnMessage(echoPattern, func(_ context.Context, hc hiptailbot.HookContext[*hiptailbot.RoomMessageEvent]) (hiptailbot.Result, error) {
		if len(hc.Matches) < 2 || hc.Matches[1] == "" {
			return hiptailbot.Continue(nil), nil
		}
		return hiptailbot.Continue(hiptailbot.TextReply(hc.Matches[1])), nil
	}); err != nil {
		return err
	}

	return bot.OnTopic(nil, func(_ context.Context, hc hiptailbot.HookContext[*hiptailbot.RoomTopicChangeEvent]) (hiptailbot.Result, error) {
		hc.Logger.Info("Topic changed", hiptailbot.LogFields{
			"room":   hc.Event.Room.Name,
			"topic":  hc.Event.Topic,
			"sender": hc.Event.Sender.MentionName,
		})
		return hiptailbot.Continue(nil), nil
	})
}
