package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/server"
)

var sessionTTL = server.DefaultSessionTTL

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering HTTP API",
	Long: `Serve exposes the engine over HTTP:

  POST   /v1/chat              answer a question (mode: rule | llm)
  POST   /v1/diagnose          rank diseases for symptoms
  GET    /v1/symptoms/common   list common symptoms
  GET    /v1/diseases/:name    disease profile
  GET    /v1/sessions/:id      conversation context
  DELETE /v1/sessions/:id      forget a conversation
  GET    /healthz              liveness
  GET    /metrics              Prometheus metrics

Example:
  medqa serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().DurationVar(&sessionTTL, "session-ttl", server.DefaultSessionTTL, "idle conversation lifetime")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown(context.Background())

	srv := server.New(a.pipeline, server.NewSessions(sessionTTL), a.metrics, a.logger)
	a.logger.Info("starting server", zap.String("addr", a.cfg.Server.Addr))
	return srv.Run(ctx, a.cfg.Server)
}
