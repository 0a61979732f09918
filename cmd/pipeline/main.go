package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pitchrank/pitchrank/external/feed"
	"github.com/pitchrank/pitchrank/internal/config"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/postgres"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/platform/resilience"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries everything a subcommand needs once config and the database
// connection are up.
type app struct {
	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB

	teamRepo     *postgres.TeamRepository
	leagueRepo   *postgres.LeagueRepository
	mapRepo      *postgres.SourceMapRepository
	stagedRepo   *postgres.StagedRowRepository
	standingRepo *postgres.StandingRepository
	resolver     *usecase.ResolverService
	standingsSvc *usecase.StandingsService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &app{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		teamRepo:     postgres.NewTeamRepository(db),
		leagueRepo:   postgres.NewLeagueRepository(db),
		mapRepo:      postgres.NewSourceMapRepository(db),
		stagedRepo:   postgres.NewStagedRowRepository(db, cfg.PipelineUpsertChunk),
		standingRepo: postgres.NewStandingRepository(db, cfg.PipelineUpsertChunk),
	}
	a.resolver = usecase.NewResolverService(a.teamRepo, a.leagueRepo, a.mapRepo, logger)
	a.standingsSvc = usecase.NewStandingsService(a.standingRepo, cfg.PipelineWorkers, logger)
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.logger.Sync()
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pitchrank",
		Short:         "Youth soccer ranking pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newLoadCommand(),
		newRankingsCommand(),
		newScrapeCommand(),
		newStandingsCommand(),
	)
	return root
}

func newLoadCommand() *cobra.Command {
	var (
		source string
		limit  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Process one batch of unprocessed staged rows into standings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if limit <= 0 {
				limit = a.cfg.PipelineBatchSize
			}
			loader := usecase.NewLoaderService(a.stagedRepo, a.resolver, a.standingsSvc, usecase.LoaderConfig{
				BatchSize:     limit,
				Source:        source,
				DryRun:        dryRun,
				SeasonEndYear: a.cfg.PipelineSeasonEndYear,
			}, a.logger)

			stats, err := loader.ProcessBatch(cmd.Context())
			if err != nil {
				return fmt.Errorf("process batch: %w", err)
			}

			fmt.Printf("read=%d deduped=%d skipped=%d written=%d created=%d elapsed=%s\n",
				stats.Read, stats.Deduped, stats.Skipped, stats.Written, stats.Created, stats.Elapsed)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "provider whose staged rows to process")
	cmd.Flags().IntVar(&limit, "limit", 0, "batch size override (defaults to PIPELINE_BATCH_SIZE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without writing")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newRankingsCommand() *cobra.Command {
	var (
		source  string
		limit   int
		execute bool
	)

	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Apply a provider's national rankings to resolved teams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if limit <= 0 {
				limit = a.cfg.PipelineBatchSize
			}
			rankings := usecase.NewRankingsService(a.stagedRepo, a.teamRepo, a.resolver, a.logger)

			stats, err := rankings.Refresh(cmd.Context(), source, limit, execute)
			if err != nil {
				return fmt.Errorf("refresh rankings: %w", err)
			}

			mode := "executed"
			if stats.Preview {
				mode = "preview"
			}
			fmt.Printf("%s read=%d skipped=%d deduped=%d cleared=%d updated=%d elapsed=%s\n",
				mode, stats.Read, stats.Skipped, stats.Deduped, stats.Cleared, stats.Updated, stats.Elapsed)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "provider whose ranking rows to apply")
	cmd.Flags().IntVar(&limit, "limit", 0, "row limit override (defaults to PIPELINE_BATCH_SIZE)")
	cmd.Flags().BoolVar(&execute, "execute", false, "commit the refresh instead of previewing it")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newScrapeCommand() *cobra.Command {
	var (
		source     string
		checkpoint string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch every published division into the staging table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.FeedBaseURL == "" {
				return fmt.Errorf("FEED_BASE_URL is required for scrape")
			}
			if checkpoint == "" {
				checkpoint = a.cfg.FeedCheckpointPath
			}

			client := feed.NewClient(feed.ClientConfig{
				HTTPClient:        &http.Client{Timeout: a.cfg.FeedTimeout},
				BaseURL:           a.cfg.FeedBaseURL,
				MaxRetries:        a.cfg.FeedMaxRetries,
				RateLimitCooldown: a.cfg.FeedRateLimitCooldown,
				BackoffBase:       a.cfg.FeedBackoffBase,
				Logger:            a.logger,
				CircuitBreaker: resilience.CircuitBreakerConfig{
					Enabled:          a.cfg.FeedCircuitEnabled,
					FailureThreshold: a.cfg.FeedCircuitFailureCount,
					OpenTimeout:      a.cfg.FeedCircuitOpenTimeout,
					HalfOpenMaxReq:   a.cfg.FeedCircuitHalfOpenMaxReq,
				},
			})

			units, err := client.FetchDivisions(cmd.Context())
			if err != nil {
				return fmt.Errorf("list divisions: %w", err)
			}

			runner := feed.NewRunner(client, a.stagedRepo, a.logger, feed.RunnerConfig{
				Provider:       source,
				Workers:        a.cfg.FeedWorkers,
				BatchDelay:     a.cfg.FeedBatchDelay,
				CheckpointPath: checkpoint,
			})

			stats, err := runner.Run(cmd.Context(), units)
			if err != nil {
				return fmt.Errorf("scrape run: %w", err)
			}

			fmt.Printf("units=%d resumed=%d fetched=%d inserted=%d failed=%d\n",
				stats.Units, stats.Resumed, stats.Fetched, stats.Inserted, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "provider name recorded on staged rows")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "checkpoint file override (defaults to FEED_CHECKPOINT_PATH)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newStandingsCommand() *cobra.Command {
	var leagueID int64

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print one league's stored standings table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			rows, err := a.standingRepo.ListByLeague(cmd.Context(), leagueID)
			if err != nil {
				return fmt.Errorf("list standings: %w", err)
			}
			if len(rows) == 0 {
				fmt.Printf("no standings for league %d\n", leagueID)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POS\tTEAM\tDIV\tP\tW\tD\tL\tGF\tGA\tPTS\tFORM\tSOURCE")
			for _, row := range rows {
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
					row.Position, row.TeamID, row.Division,
					row.Played, row.Won, row.Drawn, row.Lost,
					row.GoalsFor, row.GoalsAgainst, row.Points,
					row.Form, row.Provenance)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&leagueID, "league", 0, "league id to print")
	_ = cmd.MarkFlagRequired("league")
	return cmd
}
