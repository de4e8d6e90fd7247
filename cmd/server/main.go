package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"socialnet/internal/config"
	"socialnet/internal/queue"
	"socialnet/internal/redis"
	"socialnet/internal/transport/http"
	"socialnet/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "socialnet",
		Usage: "social network server with follower notifications",
		Commands: []*cli.Command{
			serveCommand(),
			tailCommand(),
		},
	}
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("socialnet: %v", err)
	}
}

var envFileFlag = &cli.StringFlag{
	Name:  "env-file",
	Value: ".env",
	Usage: "dotenv file to load before reading the environment",
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			envFileFlag,
			&cli.StringFlag{Name: "port", Usage: "listen port, overrides SERVER_PORT"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("env-file"))
			if err != nil {
				return err
			}
			if port := c.String("port"); port != "" {
				cfg.ServerPort = port
			}
			return http.Run(c.Context, cfg)
		},
	}
}

func tailCommand() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "print network activity from the Redis stream",
		Flags: []cli.Flag{
			envFileFlag,
			&cli.BoolFlag{Name: "from-start", Usage: "replay the stream when the group is new"},
			&cli.StringSliceFlag{Name: "type", Usage: "only print these event types (repeatable)"},
			&cli.StringFlag{Name: "group", Value: queue.ConsumerGroupActivity, Usage: "consumer group name"},
			&cli.IntFlag{Name: "workers", Value: 1, Usage: "number of consumers in the group"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("env-file"))
			if err != nil {
				return err
			}
			if cfg.RedisURL == "" {
				return fmt.Errorf("REDIS_URL is required for tail")
			}

			printer, err := worker.NewPrinter(os.Stdout, c.StringSlice("type")...)
			if err != nil {
				return err
			}

			rdb, err := redis.Connect(c.Context, cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			defer rdb.Close()

			mgr := worker.NewManager(queue.NewConsumer(rdb.Client), printer, worker.ManagerConfig{
				Stream:      cfg.ActivityStream,
				Group:       c.String("group"),
				FromStart:   c.Bool("from-start"),
				WorkerCount: c.Int("workers"),
			})
			if err := mgr.Start(c.Context); err != nil {
				return fmt.Errorf("start tail: %w", err)
			}
			<-c.Context.Done()
			mgr.Stop()
			return nil
		},
	}
}
