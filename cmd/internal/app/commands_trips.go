package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
)

func tripsCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "trips",
		Usage: "trip operations",
		Commands: []*cli.Command{
			{
				Name:      "watch",
				Usage:     "stream live updates for a trip until interrupted",
				ArgsUsage: "<trip-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tripID := cmd.Args().First()
					if tripID == "" {
						return errors.New("trip id required")
					}
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						go func() {
							if err := a.ServeMetrics(ctx); err != nil {
								log.Warn("metrics.serve.fail", "err", err)
							}
						}()

						w, err := a.Watch(ctx, tripID)
						if err != nil {
							return err
						}
						defer w.Close()

						for {
							select {
							case <-ctx.Done():
								return nil
							case upd, ok := <-w.Updates():
								if !ok {
									return w.Err()
								}
								fmt.Printf("%s %s (%.5f, %.5f)", upd.TripID, upd.Status, upd.Lat, upd.Lng)
								if upd.ETA != "" {
									fmt.Printf(" eta %s", upd.ETA)
								}
								fmt.Println()
							}
						}
					})
				},
			},
		},
	}
}
