package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/config"
	"github.com/QuangTung97/marketing/pkg/memtable"
	"github.com/QuangTung97/marketing/pkg/querycache"
	"github.com/QuangTung97/marketing/service/marketing"
	"github.com/QuangTung97/marketing/service/query"
)

type app struct {
	logger *zap.Logger
	query  *query.Service
	close  func()
}

func newTable(conf config.Config) (querycache.Table, func()) {
	if conf.Cache.Type == config.CacheTypeMemcache {
		client, err := conf.Memcache.Connect()
		if err != nil {
			panic(err)
		}
		return client, func() { _ = client.Close() }
	}
	return memtable.New(conf.Cache.SizeMB * 1024 * 1024), func() {}
}

func newApp() *app {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	client, err := marketing.New(conf.Client.BaseURL,
		marketing.WithHTTPClient(&http.Client{Timeout: conf.Client.Timeout}),
		marketing.WithTokenSource(marketing.StaticToken(conf.Client.Token)),
		marketing.WithLogger(logger),
		marketing.WithMetrics(marketing.NewMetrics(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		panic(err)
	}

	table, closeTable := newTable(conf)
	store := querycache.New(table,
		querycache.WithCacheTime(conf.Cache.CacheTime),
		querycache.WithFetchTimeout(conf.Cache.FetchTimeout),
		querycache.WithLogger(logger),
		querycache.WithMetrics(querycache.NewMetrics(prometheus.DefaultRegisterer)),
	)

	return &app{
		logger: logger,
		query:  query.New(client, store, query.WithLogger(logger)),
		close: func() {
			closeTable()
			_ = logger.Sync()
		},
	}
}

func main() {
	var a *app

	rootCmd := &cobra.Command{
		Use:           "marketing",
		Short:         "operate the marketing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a = newApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	getApp := func() *app { return a }
	rootCmd.AddCommand(
		campaignsCommand(getApp),
		executionsCommand(getApp),
		budgetCommand(getApp),
		systemCommand(getApp),
		trackCommand(getApp),
		dashboardCommand(getApp),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "[ERROR]", err)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// withID runs fn with the id in args[0] and prints its result
func withID[T any](
	getApp func() *app, fn func(s *query.Service, ctx context.Context, id int64) (T, error),
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		result, err := fn(getApp().query, cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	}
}

// noArgs runs fn and prints its result
func noArgs[T any](
	getApp func() *app, fn func(s *query.Service, ctx context.Context) (T, error),
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		result, err := fn(getApp().query, cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	}
}
