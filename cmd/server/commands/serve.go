package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mini_shop/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	gin.SetMode(rt.cfg.Server.Mode)
	srv, err := server.New(rt.cfg, rt.log, rt.db, server.Options{Cache: rt.cache})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
