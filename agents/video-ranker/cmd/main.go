package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kratos/kratos/v2"
	"github.com/urfave/cli/v2"

	videoranker "truthtube/agents/video-ranker"
	"truthtube/agents/video-ranker/scoring"
	"truthtube/agents/video-ranker/youtube"
	"truthtube/internal/models"
	"truthtube/shared/ai"
	"truthtube/shared/config"
	"truthtube/shared/email"
	"truthtube/shared/logger"
	"truthtube/shared/monitoring"
	"truthtube/shared/scheduler"
	"truthtube/shared/server"
)

const name = "truthtube"

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    name,
		Usage:   "rank YouTube videos by how much they actually say",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file (default $CONFIG_FILE or config.yaml)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the HTTP API and run scheduled comparisons",
				Action: ServeAction,
			},
			{
				Name:      "analyze",
				Usage:     "analyze 1 to 5 URLs and print the JSON report",
				ArgsUsage: "URL...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "url", Aliases: []string{"u"}, Usage: "video URL (repeatable)"},
				},
				Action: AnalyzeAction,
			},
			{
				Name:   "run-once",
				Usage:  "analyze every configured comparison once and exit",
				Action: RunOnceAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal(err)
	}
}

type deps struct {
	cfg          *config.Config
	orchestrator *videoranker.Orchestrator
	bench        *videoranker.Bench
	monitor      *monitoring.Monitor
}

func setup(ctx context.Context, c *cli.Context) (*deps, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	model, err := ai.NewModel(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", cfg.AI.Provider, err)
	}
	llm := ai.NewClient(model, &cfg.AI)

	platform, err := youtube.NewClient(ctx, &cfg.YouTube)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	resolver := youtube.NewResolver(platform, time.Duration(cfg.YouTube.FetchTimeoutSeconds)*time.Second)

	scorers := scoring.PerVideo(llm)
	originality := scoring.NewOriginalityScorer(llm)
	return &deps{
		cfg:          cfg,
		orchestrator: videoranker.NewOrchestrator(resolver, scorers, originality, &cfg.Analysis),
		bench:        videoranker.NewBench(resolver, scorers, originality, cfg.AI.Model, cfg.Analysis.MaxVideos),
		monitor:      monitoring.NewMonitor(),
	}, nil
}

func (d *deps) agent() *videoranker.ComparisonAgent {
	var mailer videoranker.ReportMailer
	if d.cfg.Email.Enabled() {
		mailer = email.NewSender(&d.cfg.Email)
	}
	return videoranker.NewComparisonAgent(d.cfg.Comparisons, d.orchestrator, mailer)
}

func ServeAction(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := setup(ctx, c)
	if err != nil {
		return err
	}

	if len(d.cfg.Comparisons) > 0 {
		s := scheduler.New(d.cfg.Schedule, d.agent(), d.monitor)
		go func() {
			if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Errorf("Scheduler failed: %v", err)
			}
		}()
	}

	srv := server.NewHTTPServer(&d.cfg.Server, d.orchestrator, d.bench, d.monitor, Version)
	app := kratos.New(
		kratos.Name(name),
		kratos.Version(Version),
		kratos.Context(ctx),
		kratos.Server(srv),
	)
	logger.Log.Infof("Serving on %s", d.cfg.Server.Addr)
	return app.Run()
}

func AnalyzeAction(c *cli.Context) error {
	urls := append(c.StringSlice("url"), c.Args().Slice()...)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := setup(ctx, c)
	if err != nil {
		return err
	}

	report, err := d.orchestrator.Analyze(ctx, urls)
	if err != nil {
		return cli.Exit(err.Error(), exitCode(models.KindOf(err)))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// exitCode gives every request-level error kind its own process exit status.
func exitCode(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidRequest:
		return 2
	case models.KindInvalidURL:
		return 3
	case models.KindVideoUnavailable:
		return 4
	case models.KindNoVideosResolved:
		return 5
	case models.KindScoringError:
		return 6
	case models.KindCollaboratorTimeout:
		return 7
	case models.KindCanceled:
		return 130
	default:
		return 1
	}
}

func RunOnceAction(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := setup(ctx, c)
	if err != nil {
		return err
	}

	agent := d.agent()
	if err := agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}
	if err := scheduler.New(d.cfg.Schedule, agent, d.monitor).RunOnce(ctx); err != nil {
		return err
	}
	fmt.Println(d.monitor.GetStatusSummary())
	return nil
}
