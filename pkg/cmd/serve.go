package cmd

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abel123/zeus/pkg/bridge"
	"github.com/abel123/zeus/pkg/server"
)

func init() {
	ServeCmd.Flags().String("bind", "", "the address the server listens on, overrides server.bind")
	RootCmd.AddCommand(ServeCmd)
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the chart bridge and the control api",
	RunE: func(cmd *cobra.Command, args []string) error {
		bind, err := cmd.Flags().GetString("bind")
		if err != nil {
			return err
		}

		if bind == "" {
			bind = userConfig.Server.Bind
		}

		client, err := userConfig.NewClient()
		if err != nil {
			return err
		}

		hub := bridge.NewHub(client, userConfig.ControllerOptions())
		srv := server.New(bind, hub)
		srv.AllowOrigins = userConfig.Server.AllowOrigins

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			hub.Run(ctx)
			return nil
		})
		g.Go(func() error {
			return srv.Run(ctx)
		})

		go server.PingUntil(ctx, localURL(bind), func() {
			log.Infof("zeus is ready, analytics at %s, charts connect to %s/ws/chart", userConfig.Analytics.BaseURL, localURL(bind))
		})

		return g.Wait()
	},
}

// localURL returns the loopback url of a listen address.
func localURL(bind string) string {
	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return "http://" + bind
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return "http://" + net.JoinHostPort(host, port)
}
