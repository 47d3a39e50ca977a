package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/reasonrank/reasongraph/internal/api/handlers"
	mw "github.com/reasonrank/reasongraph/internal/api/middleware"
	"github.com/reasonrank/reasongraph/internal/config"
	"github.com/reasonrank/reasongraph/internal/domain"
	"github.com/reasonrank/reasongraph/internal/service"
	"github.com/reasonrank/reasongraph/internal/similarity"
	"github.com/reasonrank/reasongraph/internal/store"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Engine  *service.Engine
	Flusher *service.ScoreFlusher

	startTime time.Time
	metrics   *mw.MetricsCollector
}

// NewApp wires the engine, its storage adapters and the HTTP surface.
// db may be nil, in which case the engine runs purely in memory.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	var stores service.Stores
	var scoreStore domain.ScoreStore
	if db != nil {
		stores = service.Stores{
			Nodes:        store.NewNodeStore(db),
			Edges:        store.NewEdgeStore(db),
			Quality:      store.NewQualityStore(db),
			Challenges:   store.NewChallengeStore(db),
			Contributors: store.NewContributorStore(db),
			Linkage:      store.NewLinkageStore(db),
		}
		scoreStore = store.NewScoreStore(db)
	}

	engine := service.NewEngine(logger, stores)
	engine.SetPropagationConfig(domain.PropagationConfig{
		MaxDepth: config.PropagationMaxDepth(),
		Epsilon:  config.PropagationEpsilon(),
	})

	var vectors *similarity.PGVector
	if db != nil {
		vectors = similarity.NewPGVector(db, config.SimilarityCacheTTL(), logger)
		engine.SetSimilarityProvider(vectors)
	}

	var flusher *service.ScoreFlusher
	if scoreStore != nil {
		flusher = service.NewScoreFlusher(engine, scoreStore, logger)
		flusher.SetInterval(config.ScoreFlushInterval())
	}

	// Handlers
	claimHandler := handlers.NewClaimHandler(engine)
	argumentHandler := handlers.NewArgumentHandler(engine)
	evidenceHandler := handlers.NewEvidenceHandler(engine)
	challengeHandler := handlers.NewChallengeHandler(engine)
	edgeHandler := handlers.NewEdgeHandler(engine)
	linkageHandler := handlers.NewLinkageHandler(engine)
	nodeHandler := handlers.NewNodeHandler(engine)
	contributorHandler := handlers.NewContributorHandler(engine)
	similarityHandler := handlers.NewSimilarityHandler(engine, vectors)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Engine:    engine,
		Flusher:   flusher,
		startTime: time.Now(),
	}

	app.metrics = mw.NewMetricsCollector()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		// Claims
		r.Route("/claims", func(r chi.Router) {
			r.Post("/", claimHandler.Create)
			r.Get("/leaderboard", claimHandler.Leaderboard)
		})

		// Arguments
		r.Route("/arguments", func(r chi.Router) {
			r.Post("/", argumentHandler.Create)
			r.Get("/{id}/similar", argumentHandler.Similar)
		})

		// Evidence and methodology challenges
		r.Route("/evidence", func(r chi.Router) {
			r.Post("/", evidenceHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/status", evidenceHandler.SetStatus)
				r.Get("/quality", evidenceHandler.GetQuality)
				r.Post("/challenges", evidenceHandler.SubmitChallenge)
				r.Get("/challenges", evidenceHandler.ListChallenges)
			})
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/{id}", challengeHandler.GetByID)
			r.Post("/{id}/evaluations", challengeHandler.Evaluate)
		})

		// Edges and linkage debates
		r.Route("/edges", func(r chi.Router) {
			r.Post("/supports", edgeHandler.CreateSupports)
			r.Post("/attacks", edgeHandler.CreateAttacks)
			r.Post("/evidence", edgeHandler.CreateEvidenceLink)
			r.Post("/similar", edgeHandler.CreateSimilar)
			r.Post("/similar/auto", similarityHandler.LinkAuto)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", edgeHandler.GetByID)
				r.Get("/relevance", edgeHandler.GetRelevance)
				r.Post("/linkage", linkageHandler.Record)
				r.Get("/linkage", linkageHandler.List)
			})
		})

		// Nodes and scores
		r.Route("/nodes", func(r chi.Router) {
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", nodeHandler.GetByID)
				r.Delete("/", nodeHandler.Delete)
				r.Get("/score", nodeHandler.GetScore)
				r.Put("/embedding", similarityHandler.UpsertEmbedding)
				r.Get("/neighbors", similarityHandler.Nearest)
			})
		})

		r.Get("/linkage/{id}", linkageHandler.GetByID)

		r.Get("/events", nodeHandler.Events)

		// Contributors
		r.Route("/contributors", func(r chi.Router) {
			r.Post("/", contributorHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", contributorHandler.GetByID)
				r.Post("/credentials", contributorHandler.AddCredential)
				r.Get("/reputation", contributorHandler.GetReputation)
			})
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		g := app.Engine.Graph()
		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"request_count":  app.metrics.Requests(),
			"error_count":    app.metrics.Errors(),
			"graph": map[string]any{
				"nodes": len(g.Nodes()),
				"edges": len(g.Edges()),
			},
			"runtime": map[string]any{
				"goroutines": runtime.NumGoroutine(),
				"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
				"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
				"num_gc":     memStats.NumGC,
				"go_version": runtime.Version(),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure the storage adapters satisfy the domain interfaces at compile time.
var (
	_ domain.NodeStore        = (*store.NodeStore)(nil)
	_ domain.EdgeStore        = (*store.EdgeStore)(nil)
	_ domain.QualityStore     = (*store.QualityStore)(nil)
	_ domain.ChallengeStore   = (*store.ChallengeStore)(nil)
	_ domain.ContributorStore = (*store.ContributorStore)(nil)
	_ domain.LinkageStore     = (*store.LinkageStore)(nil)
	_ domain.ScoreStore       = (*store.ScoreStore)(nil)

	_ domain.SimilarityProvider = (*similarity.PGVector)(nil)
	_ domain.SimilarityProvider = (*similarity.Static)(nil)
)
