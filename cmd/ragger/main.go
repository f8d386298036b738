package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/ragger"
	"github.com/flarexio/ragger/openai"
	"github.com/flarexio/ragger/persistence/chromem"

	mcpE "github.com/flarexio/ragger/mcp"
	httpT "github.com/flarexio/ragger/transport/http"
	natsT "github.com/flarexio/ragger/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "ragger",
		Usage: "Ask questions about employees in a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the employee records (CSV or XLSX)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML config file",
			},
			&cli.IntFlag{
				Name:  "top-n",
				Usage: "Number of employees retrieved per question",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log informational messages",
			},
			&cli.BoolFlag{
				Name:  "http",
				Usage: "Enable HTTP transport",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "HTTP server address",
				Value: ":8080",
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL, NATS transport is disabled when empty",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
			&cli.StringFlag{
				Name:  "edge-id",
				Usage: "Edge ID used in the NATS topic, defaults to the hostname",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "connect",
				Usage: "Chat with a remote ragger over NATS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "nats",
						Usage:   "NATS server URL",
						Value:   nats.DefaultURL,
						Sources: cli.EnvVars("NATS_URL"),
					},
					&cli.StringFlag{
						Name:    "nats-creds",
						Usage:   "NATS user credentials file",
						Sources: cli.EnvVars("NATS_CREDS"),
					},
					&cli.StringFlag{
						Name:     "edge-id",
						Usage:    "Edge ID of the remote ragger",
						Required: true,
					},
				},
				Action: connect,
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func loadConfig(path string) (ragger.Config, error) {
	if path == "" {
		return ragger.DefaultConfig(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return ragger.Config{}, err
	}
	defer f.Close()

	var cfg ragger.Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return ragger.Config{}, err
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	return cfg.Build()
}

func natsOptions(name, creds string) []nats.Option {
	opts := []nats.Option{
		nats.Name(name),
	}

	if creds != "" {
		opts = append(opts, nats.UserCredentials(creds))
	}

	return opts
}

func run(ctx context.Context, cmd *cli.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if path := cmd.String("path"); path != "" {
		cfg.Records = path
	}

	if n := int(cmd.Int("top-n")); n > 0 {
		cfg.TopN = n
	}

	log, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	embedder, err := openai.NewEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	chat, err := openai.NewChatModel(cfg.Chat)
	if err != nil {
		return err
	}

	vector, err := chromem.NewChromemVectorDB(cfg.Vector)
	if err != nil {
		return err
	}

	collection, err := vector.Collection(cfg.Vector.Collection, embedder.Embed)
	if err != nil {
		return err
	}

	result, err := ragger.LoadRecords(cfg.Records)
	if err != nil {
		return err
	}

	if err := ragger.BuildIndex(ctx, result.Records, embedder, collection); err != nil {
		return err
	}

	svc, err := ragger.NewService(cfg, collection, chat)
	if err != nil {
		return err
	}

	svc = ragger.LoggingMiddleware(log)(svc)

	endpoints := ragger.MakeEndpoints(svc)

	// Add NATS Transport
	if natsURL := cmd.String("nats"); natsURL != "" {
		edgeID := cmd.String("edge-id")
		if edgeID == "" {
			hostname, err := os.Hostname()
			if err != nil {
				return err
			}

			edgeID = hostname
		}

		nc, err := nats.Connect(natsURL,
			natsOptions("Ragger Server - "+edgeID, cmd.String("nats-creds"))...,
		)

		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "ragger",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup(natsT.Topic(edgeID))
		natsT.AddEndpoints(root, endpoints)

		log.Info("nats transport enabled", zap.String("topic", natsT.Topic(edgeID)))
	}

	if cmd.Bool("http") {
		r := gin.New()
		r.Use(gin.Recovery())

		httpT.AddRouters(r, endpoints)
		httpT.AddStreamableRouters(r, mcpE.Endpoints(svc))

		httpAddr := cmd.String("http-addr")
		go r.Run(httpAddr)

		log.Info("http transport enabled", zap.String("addr", httpAddr))
	}

	console := ragger.NewConsole(svc, os.Stdin, os.Stdout)
	return console.Run(ctx)
}

func connect(ctx context.Context, cmd *cli.Command) error {
	edgeID := cmd.String("edge-id")

	nc, err := nats.Connect(cmd.String("nats"),
		natsOptions("Ragger Client - "+edgeID, cmd.String("nats-creds"))...,
	)

	if err != nil {
		return err
	}
	defer nc.Drain()

	endpoints := natsT.MakeEndpoints(nc, natsT.Topic(edgeID))

	var svc ragger.Service
	svc = ragger.ProxyMiddleware(endpoints)(svc)

	console := ragger.NewConsole(svc, os.Stdin, os.Stdout)
	return console.Run(ctx)
}
