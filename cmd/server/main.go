package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/config"
	"github.com/QuangTung97/marketing/pkg/otellib"
	"github.com/QuangTung97/marketing/pkg/queue"
	"github.com/QuangTung97/marketing/repository"
	"github.com/QuangTung97/marketing/repository/memrepo"
	"github.com/QuangTung97/marketing/service/backend"
)

type closer func()

func newRepos(conf config.Config, logger *zap.Logger) (backend.Repos, closer) {
	switch conf.Store.Type {
	case config.StoreTypeMySQL:
		db, err := conf.MySQL.Connect(logger)
		if err != nil {
			panic(err)
		}
		repos := backend.NewMySQLRepos(repository.NewProvider(db))
		return repos, func() { _ = db.Close() }

	case config.StoreTypeMemory, "":
		store := memrepo.New()
		return backend.Repos{
			Provider:  store.Provider(),
			Campaign:  store.Campaign(),
			Execution: store.Execution(),
			Metric:    store.Metric(),
		}, func() {}

	default:
		panic(fmt.Sprintf("unknown store type %q", conf.Store.Type))
	}
}

func newDispatcher(conf config.Config, logger *zap.Logger) (backend.Dispatcher, closer) {
	if !conf.RabbitMQ.Enabled {
		return backend.NewLogDispatcher(logger), func() {}
	}

	publisher, err := queue.NewPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange, logger)
	if err != nil {
		panic(err)
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Close publisher", zap.Error(err))
		}
	}
}

func startServer() {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)
	defer func() { _ = logger.Sync() }()

	tracerProvider, shutdown := otellib.InitOtel(conf.Jaeger.ServiceName, "local", conf.Jaeger)
	defer shutdown()

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	repos, closeRepos := newRepos(conf, logger)
	defer closeRepos()

	dispatcher, closeDispatcher := newDispatcher(conf, logger)
	defer closeDispatcher()

	service := backend.NewService(repos, dispatcher)
	handler := backend.NewHandler(service,
		backend.WithHandlerLogger(logger),
		backend.WithHandlerTracer(tracerProvider.Tracer("marketing-backend")),
		backend.WithJWTSecret(conf.Auth.JWTSecret),
	)

	startHTTPServer(conf, logger, handler)
}

func main() {
	rootCmd := cobra.Command{
		Use: "server",
	}
	rootCmd.AddCommand(
		startServerCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

func startServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "start the marketing backend",
		Run: func(cmd *cobra.Command, args []string) {
			startServer()
		},
	}
}

func startHTTPServer(conf config.Config, logger *zap.Logger, handler http.Handler) {
	logger.Info("Start HTTP server",
		zap.String("addr", conf.Server.HTTP.ListenString()),
		zap.String("store", string(conf.Store.Type)),
		zap.Bool("rabbitmq", conf.RabbitMQ.Enabled),
	)

	httpMux := http.NewServeMux()
	httpMux.Handle("/metrics", promhttp.Handler())
	httpMux.Handle("/", handler)

	httpServer := &http.Server{
		Addr:    conf.Server.HTTP.ListenString(),
		Handler: httpMux,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			panic(err)
		}
		logger.Info("Shutdown HTTP server successfully")
	}()

	//--------------------------------
	// Graceful Shutdown
	//--------------------------------
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(ctx)
	if err != nil {
		panic(err)
	}

	wg.Wait()
}
