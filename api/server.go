package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1/backends/result"
	"github.com/RichardKnop/machinery/v1/tasks"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/geosure/climate-risk-api/logmodule"
	"github.com/geosure/climate-risk-api/schema"
	"github.com/geosure/climate-risk-api/store"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Store is the read surface the API needs over the engine's data.
type Store interface {
	store.RiskResultStore
	store.BatchRunStore
	store.Pinger
}

// BatchEnqueuer delivers on-demand triggers to the risk worker's task
// queue. Satisfied by *machinery.Server.
type BatchEnqueuer interface {
	SendTask(signature *tasks.Signature) (*result.AsyncResult, error)
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	store Store

	// job pool enqueuer
	background BatchEnqueuer
}

// NewServer new instance of server
func NewServer(s Store, background BatchEnqueuer) *Server {
	return &Server{
		store:      s,
		background: background,
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))

	riskRoute := apiRoute.Group("/risk-scores")
	{
		riskRoute.GET("", s.listRiskScores)
	}

	batchRoute := apiRoute.Group("/batch-runs")
	batchRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.admin")))
	{
		batchRoute.GET("", s.listBatchRuns)
		batchRoute.POST("", s.forceBatchRun)
		batchRoute.GET("/latest", s.latestBatchRun)
	}

	metricRoute := r.Group("/metrics")
	metricRoute.Use(logmodule.Ginrus("Metric"))
	metricRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	metricRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.metric")))
	{
		metricRoute.GET("", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// apikeyAuthentication rejects requests whose Api-Token header does not
// match the configured key.
func (s *Server) apikeyAuthentication(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiToken := c.GetHeader("Api-Token")
		if apiToken == "" || apiToken != key {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.store.Ping()
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func (s *Server) listRiskScores(c *gin.Context) {
	locationID := c.Query("location_id")
	if locationID == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	scenario := schema.Scenario(c.Query("scenario"))

	results, err := s.store.ListRiskResults(c.Request.Context(), locationID, scenario)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorQueryRiskResults, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"risk_scores": results,
	})
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	c.JSON(code, obj)
	c.Abort()
}
