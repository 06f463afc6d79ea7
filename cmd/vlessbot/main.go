package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync/atomic"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vlessgen/go-vless-bot/aeza"
	"github.com/vlessgen/go-vless-bot/internal/config"
	"github.com/vlessgen/go-vless-bot/qr"
	"github.com/vlessgen/go-vless-bot/server"
	"github.com/vlessgen/go-vless-bot/sessions"
	"github.com/vlessgen/go-vless-bot/telegram"
	"github.com/vlessgen/go-vless-bot/workflow"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("bot exited with error")
	}
	log.Info().Msg("bot stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}

	c := config.New()
	setupLogger(c)
	displayAppname(c.GetAppName())

	if c.GetBotToken() == "" {
		return errors.New("BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ops endpoint comes up first; /readyz stays 503 until the bot is
	// authenticated with Telegram.
	var ready atomic.Bool
	go func() {
		if err := server.Run(ctx, c.GetOpsAddr(), server.NewRouter(ready.Load)); err != nil {
			log.Error().Err(err).Msg("ops server failed")
		}
	}()

	client := aeza.NewClient(c.GetAezaAPIURL(), c.GetEmailAPIURL(), aeza.WithTimeout(c.GetHTTPTimeout()))
	repo := sessions.NewInMemorySessionRepo()

	bot, err := telegram.NewBot(c.GetBotToken())
	if err != nil {
		return err
	}

	engine, err := workflow.NewEngine(repo, client, bot, qr.Renderer{})
	if err != nil {
		return err
	}

	ready.Store(true)
	bot.Run(ctx, engine)
	return nil
}

func setupLogger(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetLogPretty() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
