// musicrank is a social album-rating web service: users search the Spotify
// catalog, rate albums on a four-point scale, follow each other, and browse
// trending albums and activity feeds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/musicrank/musicrank/config"
	"github.com/musicrank/musicrank/db"
	"github.com/musicrank/musicrank/server"
	"github.com/musicrank/musicrank/session"
	"github.com/musicrank/musicrank/sigctx"
	"github.com/musicrank/musicrank/spotify"
	"github.com/musicrank/musicrank/subcmd"
	"github.com/musicrank/musicrank/syncer"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, flag.ErrHelp) {
		log.Fatal().Err(err).Msg("exiting")
	}
}

var usage = strings.TrimSpace(`
usage: musicrank $cmd
valid $cmd are 'serve' and 'fetch'
for help: musicrank $cmd -help
`)

func run() error {
	ctx := sigctx.New()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	spo := spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	cmd, args := "serve", []string{}
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	switch cmd {
	case "serve":
		return serve(ctx, cfg, database, spo, args)
	case "fetch":
		return fetch(ctx, database, spo, args)
	default:
		return errors.New(usage)
	}
}

func serve(ctx context.Context, cfg config.Config, database *db.DB, spo *spotify.Client, args []string) error {
	sc := subcmd.New("serve", "run the api server")
	port := sc.Int("port", cfg.Port, "http port")
	if err := sc.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set to serve")
	}

	sync := syncer.New(database, spo)
	sessions := session.New(cfg.SessionSecret)
	srv := server.New(database, spo, sync, sessions, cfg.CronSecret)

	addr := fmt.Sprintf(":%d", *port)
	log.Info().Str("addr", addr).Msg("serving")
	return srv.Run(ctx, addr)
}

// fetch is the one-shot counterpart of the cron refresh endpoint: pull the
// newest releases into local storage and exit.
func fetch(ctx context.Context, database *db.DB, spo *spotify.Client, args []string) error {
	sc := subcmd.New("fetch", "sync the newest catalog releases and exit")
	limit := sc.Int("limit", 50, "how many releases to fetch")
	if err := sc.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	releases, err := spo.FetchNewReleases(ctx, *limit)
	if err != nil {
		return fmt.Errorf("fetch error: %w", err)
	}
	log.Info().Msgf("found %d new releases", len(releases))

	sync := syncer.New(database, spo)
	_, stats, err := sync.Sync(ctx, releases)
	if err != nil {
		return err
	}

	log.Info().Msgf("completed: %d created, %d updated, %d failed",
		stats.Created, stats.Updated, stats.Failed)
	return nil
}
