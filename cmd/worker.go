package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/events"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Refresh learner analysis from result events",
	Long: "Consumes quiz.result.created events from the configured AMQP exchange\n" +
		"and recomputes the learner's analysis report for each one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.AMQP.URL == "" {
			return errors.New("amqp.url is not configured")
		}

		c, err := events.NewConsumer(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange, a.cfg.AMQP.Queue,
			[]string{events.TypeResultCreated}, a.logger)
		if err != nil {
			return fmt.Errorf("connect consumer: %w", err)
		}
		defer c.Close()

		svc := a.analytics()
		log := a.logger.Named("worker")
		log.Info("consuming", zap.String("queue", a.cfg.AMQP.Queue))

		return c.Run(cmd.Context(), func(ctx context.Context, e events.Event) error {
			rc, err := e.ResultCreatedPayload()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, a.cfg.Pipeline.RefreshTimeout)
			defer cancel()
			report, err := svc.Analyze(ctx, rc.UserID)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", rc.UserID, err)
			}
			log.Info("report refreshed",
				zap.String("user", rc.UserID),
				zap.String("result", rc.ResultID),
				zap.Bool("degraded", report.Degraded))
			return nil
		})
	},
}
