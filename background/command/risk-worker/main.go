package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RichardKnop/machinery/v1"
	machineryconf "github.com/RichardKnop/machinery/v1/config"
	"github.com/getsentry/sentry-go"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geosure/climate-risk-api/background"
	"github.com/geosure/climate-risk-api/external/exposure"
	"github.com/geosure/climate-risk-api/external/vulnerability"
	"github.com/geosure/climate-risk-api/hazard"
	"github.com/geosure/climate-risk-api/observability"
	"github.com/geosure/climate-risk-api/store"
)

var (
	mongoStore   store.MongoStore
	orchestrator *background.Orchestrator
)

func panicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("climrisk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func scheduleFromConfig() background.Schedule {
	s := background.Schedule{
		Month:  time.Month(viper.GetInt("risk.schedule.month")),
		Day:    viper.GetInt("risk.schedule.day"),
		Hour:   viper.GetInt("risk.schedule.hour"),
		Minute: viper.GetInt("risk.schedule.minute"),
	}
	if s.Month < time.January || s.Month > time.December {
		s.Month = time.January
	}
	if s.Day < 1 || s.Day > 28 {
		s.Day = 1
	}
	return s
}

func main() {
	var configFile string

	runCtx, cancelRun := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Worker is preparing to shutdown")

		cancelRun()

		if orchestrator != nil {
			log.Info("Waiting for in-flight units")
			orchestrator.Shutdown()
		}

		if mongoStore != nil {
			log.Info("Shutting down mongo store")
			mongoStore.Close()
		}

		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	// initialise mongodb connections
	opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
	opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		log.Panicf("create mongo client with error: %s", err)
	}

	err = mongoClient.Connect(runCtx)
	if nil != err {
		log.Panicf("connect mongo database with error: %s", err)
	}

	mongoStore = store.NewMongoStore(mongoClient, viper.GetString("mongo.database"))

	var conf = &machineryconf.Config{
		Broker:        viper.GetString("redis.conn"),
		DefaultQueue:  "climrisk_background",
		ResultBackend: viper.GetString("redis.conn"),
	}
	taskServer, err := machinery.NewServer(conf)
	if err != nil {
		log.Panic(err)
	}

	registry := hazard.NewRegistry()
	panicIfError(hazard.ApplyBinOverrides(registry))

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
	}

	orchestrator = background.NewOrchestrator(
		mongoStore,
		registry,
		exposure.New(viper.GetString("exposure.endpoint"), httpClient),
		vulnerability.New(viper.GetString("vulnerability.endpoint"), httpClient),
		observability.NewMetrics(),
		clockwork.NewRealClock(),
		background.Config{
			PoolSize:          viper.GetInt("risk.pool_size"),
			UnitTimeout:       viper.GetDuration("risk.unit_timeout"),
			ProviderRetries:   viper.GetInt("risk.provider_retries"),
			TargetYears:       viper.GetIntSlice("risk.target_years"),
			WindowYears:       viper.GetInt("risk.window_years"),
			FallbackToBinZero: viper.GetBool("risk.fallback_to_bin_zero"),
		},
	)

	// The batch collectors live in this process, so they are scraped here
	// rather than through the api server.
	metricsPort := viper.GetString("risk.metrics_port")
	if metricsPort == "" {
		metricsPort = "2112"
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+metricsPort, mux); err != nil {
			log.WithField("prefix", "init").WithError(err).Error("metrics listener stopped")
		}
	}()

	scheduler := background.NewScheduler(clockwork.NewRealClock(), scheduleFromConfig(), orchestrator)
	go scheduler.Run(runCtx)

	manager := background.New(orchestrator, taskServer)
	panicIfError(manager.RegisterTasks())

	if err := manager.Run(); err != nil {
		log.Panic(err)
	}
}
