package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dghubble/oauth1"
	"github.com/hashicorp/go-retryablehttp"

	"ContentCurator/internal/composer"
	"ContentCurator/internal/config"
	"ContentCurator/internal/infrastructure/llm"
	"ContentCurator/internal/infrastructure/pdf"
	cronsched "ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/infrastructure/source"
	"ContentCurator/internal/infrastructure/storage"
	"ContentCurator/internal/infrastructure/telegram"
	"ContentCurator/internal/infrastructure/twitter"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/oracle"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	ledger   *storage.SQLiteLedger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance from config.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	ledger, err := storage.Open(cfg.Database.Path, baseLogger.With("component", "ledger"))
	if err != nil {
		return nil, err
	}

	httpClient := newHTTPClient()
	chatClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)

	judge := oracle.NewJudge(oracle.Deps{
		Chat:           chatClient,
		Ledger:         ledger,
		Logger:         baseLogger.With("component", "oracle"),
		MinScore:       cfg.Oracle.MinScore,
		ScoreModel:     cfg.LLM.OracleModel,
		FactCheckModel: cfg.LLM.FactCheckModel,
	})
	writer := composer.NewPostWriter(chatClient, cfg.LLM.PostRUModel, cfg.LLM.PostENModel)

	papers := source.NewAlphaXivSource(httpClient,
		cfg.Sources.AlphaXivHotURL, cfg.Sources.AlphaXivLikesURL, cfg.Sources.ArxivPDFBase,
		baseLogger.With("component", "source.alphaxiv"))
	blogs := source.NewBlogSource(httpClient, cfg.Sources.BlogFeeds,
		baseLogger.With("component", "source.blogs"))

	var signedClient *http.Client
	if cfg.Twitter.Configured() {
		oauthCfg := oauth1.NewConfig(cfg.Twitter.APIKey, cfg.Twitter.APISecret)
		token := oauth1.NewToken(cfg.Twitter.AccessToken, cfg.Twitter.AccessSecret)
		signedClient = oauthCfg.Client(context.Background(), token)
	} else {
		baseLogger.Warn("twitter credentials missing, x integration disabled")
	}
	tweets := source.NewTwitterSource(signedClient, cfg.Twitter.MonitorUsers,
		baseLogger.With("component", "source.twitter"))

	enricher := pdf.NewProcessor(httpClient, chatClient, cfg.LLM.VisionModel,
		cfg.Storage.PDFDir, cfg.Storage.ImageDir,
		baseLogger.With("component", "pdf"))

	var tgPublisher ports.ChannelPublisher
	var alerter ports.Alerter
	tg, err := telegram.NewPublisher(cfg.Telegram.BotToken, cfg.Telegram.ChannelID,
		baseLogger.With("component", "telegram"))
	if err != nil {
		baseLogger.Warn("telegram disabled", "error", err)
		alerter = telegram.NewAlerter(nil, cfg.Telegram.ErrorChatID, baseLogger.With("component", "alerter"))
	} else {
		tgPublisher = tg
		alerter = telegram.NewAlerter(tg.Bot(), cfg.Telegram.ErrorChatID, baseLogger.With("component", "alerter"))
	}

	var xPublisher ports.ChannelPublisher
	var reposter ports.Reposter
	if signedClient != nil {
		x := twitter.NewPublisher(signedClient, baseLogger.With("component", "twitter"))
		xPublisher = x
		reposter = x
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Papers: papers,
		Blogs:  blogs,
		Tweets: tweets,

		Ledger:   ledger,
		Oracle:   judge,
		Composer: writer,

		PaperEnricher: enricher,
		Articles:      blogs,

		Telegram: tgPublisher,
		Twitter:  xPublisher,
		Reposter: reposter,
		Alerter:  alerter,

		Logger: baseLogger.With("component", "pipeline"),

		MaxPapersPerRun: cfg.Oracle.MaxPapersPerRun,
		MaxBlogsPerRun:  cfg.Oracle.MaxBlogsPerRun,
	})

	return &Application{cfg: cfg, logger: baseLogger, ledger: ledger, pipeline: pipeline}, nil
}

// RunPapers executes a single papers pass.
func (a *Application) RunPapers(ctx context.Context) { a.pipeline.RunPapers(ctx) }

// RunBlogs executes a single blogs pass.
func (a *Application) RunBlogs(ctx context.Context) { a.pipeline.RunBlogs(ctx) }

// RunTweets executes a single twitter-monitoring pass.
func (a *Application) RunTweets(ctx context.Context) { a.pipeline.RunTweets(ctx) }

// RunAll runs all three category pipelines once, sequentially.
func (a *Application) RunAll(ctx context.Context) { a.pipeline.RunAll(ctx) }

// Serve starts the cron scheduler and blocks until the context is canceled
// or a termination signal arrives.
func (a *Application) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := cronsched.New(a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline)

	err := sched.Start(ctx, usecase.ScheduleConfig{
		PapersCron:  a.cfg.Scheduler.PapersCron,
		BlogsCron:   a.cfg.Scheduler.BlogsCron,
		TwitterCron: a.cfg.Scheduler.TwitterCron,
	})
	if err != nil {
		return err
	}

	a.logger.Info("scheduler started",
		"papers", a.cfg.Scheduler.PapersCron,
		"blogs", a.cfg.Scheduler.BlogsCron,
		"twitter", a.cfg.Scheduler.TwitterCron,
		"timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()
	a.logger.Info("shutting down")
	return sched.Stop(context.Background())
}

// Close releases held resources (the ledger database).
func (a *Application) Close() error {
	return a.ledger.Close()
}

func newHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return rc.StandardClient()
}
