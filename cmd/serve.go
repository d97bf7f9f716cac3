package cmd

import (
	"github.com/df07/go-material-eval/web/server"
	"github.com/urfave/cli"
)

// Serve the inspection and shading API over HTTP.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	srv := server.NewServer(ctx.Int("port"), ctx.Int("workers"))
	if err := srv.Start(); err != nil {
		logger.Errorf("server stopped: %v", err)
		return err
	}
	return nil
}
