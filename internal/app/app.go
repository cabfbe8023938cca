package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BrainSnack9/playstat/external/balldontlie"
	"github.com/BrainSnack9/playstat/external/chain"
	"github.com/BrainSnack9/playstat/external/footballdata"
	"github.com/BrainSnack9/playstat/external/genai"
	"github.com/BrainSnack9/playstat/external/translate"
	"github.com/BrainSnack9/playstat/internal/config"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/infrastructure/repository/postgres"
	"github.com/BrainSnack9/playstat/internal/interfaces/httpapi"
	"github.com/BrainSnack9/playstat/internal/platform/cache"
	"github.com/BrainSnack9/playstat/internal/platform/calls"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
	"github.com/BrainSnack9/playstat/internal/platform/ratelimit"
	"github.com/BrainSnack9/playstat/internal/platform/resilience"
	"github.com/BrainSnack9/playstat/internal/usecase"
)

// Application owns the wired HTTP server and the resources it must release on
// shutdown.
type Application struct {
	Server *http.Server
	db     *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	leagueRepo := postgres.NewLeagueRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	statsRepo := postgres.NewSeasonStatsRepository(db)
	recentRepo := postgres.NewRecentMatchesRepository(db)
	h2hRepo := postgres.NewHeadToHeadRepository(db)
	analysisRepo := postgres.NewMatchAnalysisRepository(db)
	reportRepo := postgres.NewDailyReportRepository(db)
	logRepo := postgres.NewSchedulerLogRepository(db)

	sharedCalls := calls.NewCounter()

	providers := make(map[sport.Sport]usecase.SportDataProvider)
	leagueCodes := make(map[sport.Sport][]string)
	if cfg.FootballData.Enabled {
		providers[sport.Football] = footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:        cfg.FootballData.BaseURL,
			Token:          cfg.FootballData.Token,
			Timeout:        cfg.FootballData.Timeout,
			MaxRetries:     cfg.FootballData.MaxRetries,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.FootballData),
			Pacer:          providerPacer(cfg.FootballData.RequestsPerMinute),
			Calls:          sharedCalls,
		})
		leagueCodes[sport.Football] = cfg.FootballData.LeagueCodes
	}
	if cfg.BallDontLie.Enabled {
		providers[sport.Basketball] = balldontlie.NewClient(balldontlie.ClientConfig{
			BaseURL:        cfg.BallDontLie.BaseURL,
			Token:          cfg.BallDontLie.Token,
			Timeout:        cfg.BallDontLie.Timeout,
			MaxRetries:     cfg.BallDontLie.MaxRetries,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.BallDontLie),
			Pacer:          providerPacer(cfg.BallDontLie.RequestsPerMinute),
			Calls:          sharedCalls,
		})
		leagueCodes[sport.Basketball] = cfg.BallDontLie.LeagueCodes
	}

	var generator usecase.ContentGenerator
	if cfg.GenAIAPIKey != "" {
		generator = genai.NewClient(genai.ClientConfig{
			BaseURL:        cfg.GenAIBaseURL,
			APIKey:         cfg.GenAIAPIKey,
			Model:          cfg.GenAIModel,
			MaxTokens:      cfg.GenAIMaxTokens,
			Timeout:        cfg.GenAITimeout,
			MaxRetries:     cfg.GenAIMaxRetries,
			Logger:         logger,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
			Pacer:          providerPacer(cfg.GenAIRequestsPerMinute),
			Calls:          sharedCalls,
		})
	}

	var translator usecase.Translator
	if cfg.TranslateBaseURL != "" {
		translator = translate.NewClient(translate.ClientConfig{
			BaseURL:        cfg.TranslateBaseURL,
			Token:          cfg.TranslateToken,
			Timeout:        cfg.TranslateTimeout,
			MaxRetries:     cfg.TranslateMaxRetries,
			Logger:         logger,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
			Pacer:          providerPacer(cfg.TranslateRequestsPerMin),
			Calls:          sharedCalls,
		})
	}

	var chainer usecase.JobChainer
	if cfg.ChainEnabled {
		chainer = chain.NewTrigger(chain.TriggerConfig{
			TargetBaseURL:  cfg.ChainTargetBaseURL,
			JobToken:       cfg.InternalJobToken,
			Timeout:        cfg.ChainTimeout,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
		}, logger)
	}

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		cacheTTL = time.Nanosecond
	}
	store := cache.NewStore(cacheTTL)

	translationSvc := usecase.NewTranslationService(
		analysisRepo, reportRepo, teamRepo,
		translator, cfg.TargetLocales, cfg.GlossaryTerms, logger,
	)
	syncSvc := usecase.NewSyncService(providers, leagueRepo, teamRepo, matchRepo, statsRepo, logger)
	recomputeSvc := usecase.NewRecomputeService(leagueRepo, teamRepo, matchRepo, statsRepo, recentRepo, h2hRepo, logger)
	analysisSvc := usecase.NewAnalysisService(
		leagueRepo, teamRepo, matchRepo, statsRepo, recentRepo, h2hRepo, analysisRepo,
		generator, translationSvc, logger,
	)
	reportSvc := usecase.NewReportService(
		teamRepo, matchRepo, statsRepo, recentRepo, reportRepo,
		generator, translationSvc, logger,
	)
	jobRunner := usecase.NewJobRunner(logRepo, chainer, sharedCalls, store, logger)

	handler := httpapi.NewHandler(httpapi.HandlerConfig{
		SyncService:        syncSvc,
		AnalysisService:    analysisSvc,
		ReportService:      reportSvc,
		TranslationService: translationSvc,
		RecomputeService:   recomputeSvc,
		JobRunner:          jobRunner,
		Matches:            matchRepo,
		Teams:              teamRepo,
		Analyses:           analysisRepo,
		Reports:            reportRepo,
		Cache:              store,
		LeagueCodes:        leagueCodes,
		Logger:             logger,
	})
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		db.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{Server: server, db: db}, nil
}

func (a *Application) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func circuitConfig(p config.ProviderConfig) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          p.CircuitEnabled,
		FailureThreshold: p.CircuitFailureCount,
		OpenTimeout:      p.CircuitOpenTimeout,
		HalfOpenMaxReq:   p.CircuitHalfOpenMaxReq,
	}
}

func providerPacer(requestsPerMinute int) *ratelimit.Pacer {
	if requestsPerMinute <= 0 {
		return nil
	}
	return ratelimit.NewPacer(requestsPerMinute, 1)
}
