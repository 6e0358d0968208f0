package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/mycguo/autogen-multi-agent-workflow/metrics"
	"github.com/mycguo/autogen-multi-agent-workflow/state"
	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/workflow"
)

// Server exposes the pipeline over HTTP and owns the scheduled runs.
type Server struct {
	states    *state.Manager
	runner    *workflow.Runner
	suggester *topics.Suggester

	httpServer *http.Server
	cron       *cron.Cron
	cronID     cron.EntryID
	mu         sync.Mutex

	feed         string
	suggestCount int
	autoPublish  bool
}

// ServerConfig wires the HTTP server's collaborators.
type ServerConfig struct {
	Port      string
	States    *state.Manager
	Runner    *workflow.Runner
	Suggester *topics.Suggester

	// Feed is the preset name or URL scheduled runs pull suggestions from.
	Feed string
	// SuggestCount caps how many suggestions a scheduled run considers.
	SuggestCount int
	// AutoPublish uploads scheduled runs to YouTube when they succeed.
	AutoPublish bool
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		states:       cfg.States,
		runner:       cfg.Runner,
		suggester:    cfg.Suggester,
		cron:         cron.New(),
		feed:         cfg.Feed,
		suggestCount: cfg.SuggestCount,
		autoPublish:  cfg.AutoPublish,
	}
	if s.suggestCount <= 0 {
		s.suggestCount = 10
	}

	s.httpServer = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s.router(),
	}

	return s
}

// router constructs a Gin engine with registered routes.
func (s *Server) router() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	s.registerRunRoutes(r)
	s.registerTopicRoutes(r)
	registerHealthRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting shorts server on %s", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// StartCron schedules automated runs. Each tick picks the first suggestion
// from the configured feed that is not a duplicate and submits it.
func (s *Server) StartCron(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(schedule, func() {
		log.Println("Cron triggered: starting scheduled run")

		if id, active := s.states.Active(); active {
			log.Printf("Cron skipped: run %s still in progress", id)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		suggestions, err := s.suggester.Suggest(ctx, s.feed, s.suggestCount)
		if err != nil {
			log.Printf("Cron suggestion fetch failed: %v", err)
			return
		}

		status, err := s.runner.SubmitFirstNew(ctx, suggestions, s.autoPublish)
		if err != nil {
			log.Printf("Cron submit failed: %v", err)
			return
		}
		log.Printf("Cron submitted run %s: %s", status.ID, status.Topic)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cronID = id
	s.cron.Start()
	log.Printf("Cron job started with schedule: %s", schedule)
	return nil
}

// Shutdown gracefully shuts down the server and the cron scheduler.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down shorts server...")

	if s.cron != nil {
		s.cron.Stop()
	}

	return s.httpServer.Shutdown(ctx)
}
