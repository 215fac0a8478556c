package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Server.Addr = addr
		}

		pub, err := a.publisher()
		if err != nil {
			return err
		}
		defer pub.Close()

		svc := a.analytics()
		p := a.pipeline(svc, pub, a.cfg.Pipeline)
		defer p.Close()

		srv := server.New(server.Deps{
			Quizzes:   p,
			Evaluator: p.Evaluator,
			Reports:   svc,
			QuizRepo:  a.store.QuizRepo(),
			Results:   a.store.ResultRepo(),
			Logger:    a.logger,
		}, server.Options{
			Mode:        a.cfg.Server.GinMode,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		})

		a.logger.Info("listening",
			zap.String("addr", a.cfg.Server.Addr),
			zap.String("storage", a.cfg.Storage.Driver),
			zap.Bool("llm", a.provider != nil),
			zap.Bool("events", a.cfg.AMQP.URL != ""))
		return srv.Run(cmd.Context(), a.cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
