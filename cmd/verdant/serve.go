package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/verdant-ui/verdant/pkg/live"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo application server",
		Long: `Run a demo application over the live session transport.

The demo renders a counter per session. Every click is dispatched
into the server-side tree, re-rendered, and the resulting patches
stream back over the websocket.

Examples:
  verdant serve
  verdant serve --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 5173, "Port to listen on")
	cmd.Flags().StringVarP(&host, "host", "H", "127.0.0.1", "Host to bind to")

	return cmd
}

// counterView is the demo view: session state in, description out.
func counterView(s *live.Session) *vdom.VNode {
	count := 0
	if v, ok := s.Get("count"); ok {
		count = v.(int)
	}

	return vdom.Div(
		vdom.ID("counter"),
		vdom.H1("Verdant demo"),
		vdom.P(
			vdom.Class("count"),
			vdom.Text(fmt.Sprintf("count: %d", count)),
		),
		vdom.Button(
			vdom.OnClick(func() { s.Set("count", count+1) }),
			"Increment",
		),
		vdom.Button(
			vdom.OnClick(func() { s.Set("count", 0) }),
			vdom.AttrIf(count == 0, vdom.Attr{Key: "disabled", Value: true}),
			"Reset",
		),
	)
}

func runServe(host string, port int) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := live.NewServer(counterView,
		live.WithLogger(logger),
		live.WithTitle("Verdant demo"),
		live.WithRegistry(reg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", host, port)
	return srv.ListenAndServe(ctx, addr)
}
