package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/ronakgh97/pokebrains/internal/config"
	fxmodules "github.com/ronakgh97/pokebrains/internal/fx"
	"github.com/ronakgh97/pokebrains/internal/session"
	"github.com/ronakgh97/pokebrains/internal/transport"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runSession),
	).Run()
}

func runSession(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	sess *session.Session,
	client *transport.Client,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := client.Connect(startCtx); err != nil {
				cancel()
				return err
			}
			if err := client.JoinRoom(cfg.ShowdownRoom); err != nil {
				cancel()
				return err
			}
			logger.Info().Str("room", cfg.ShowdownRoom).Msg("joined battle room")

			go func() {
				err := client.Listen(ctx, func(text string) error {
					return sess.HandleFrame(ctx, text)
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("session ended with error")
				} else {
					logger.Info().Msg("session ended")
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info().Msg("shutting down")
			cancel()

			if client.IsConnected() {
				if err := client.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing connection")
				}
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}
