package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/QuangTung97/marketing/config"
	"github.com/QuangTung97/marketing/pkg/migration"

	// for integration test, must not be imported in any main.go
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// TestCase holds the migrated test database
type TestCase struct {
	DB   *sqlx.DB
	Conf config.Config
}

var initOnce sync.Once

var globalConf config.Config
var globalDB *sqlx.DB

// NewTestCase migrates the test database once per process
func NewTestCase() *TestCase {
	initOnce.Do(func() {
		rootDir := findRootDir()

		conf := config.LoadTestConfig(rootDir)
		migration.MigrateUpForTesting(rootDir, conf.MySQL.DSN())

		globalConf = conf
		globalDB = conf.MySQL.MustConnect()
	})

	return &TestCase{
		Conf: globalConf,
		DB:   globalDB,
	}
}

// Truncate empties the tables on a single connection with foreign key checks off
func (tc *TestCase) Truncate(tables ...string) {
	ctx := context.Background()

	conn, err := tc.DB.Connx(ctx)
	if err != nil {
		panic(err)
	}
	defer func() { _ = conn.Close() }()

	mustExec := func(query string) {
		if _, err := conn.ExecContext(ctx, query); err != nil {
			panic(err)
		}
	}

	mustExec("SET FOREIGN_KEY_CHECKS = 0")
	for _, table := range tables {
		mustExec(fmt.Sprintf("TRUNCATE %s", table))
	}
	mustExec("SET FOREIGN_KEY_CHECKS = 1")
}

// TruncateAll ...
func (tc *TestCase) TruncateAll() {
	tc.Truncate("campaign_metric", "campaign_execution", "campaign")
}

func findRootDir() string {
	directory, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	for {
		if _, err := os.Stat(filepath.Join(directory, "go.mod")); err == nil {
			return directory
		}

		parent := filepath.Dir(directory)
		if parent == directory {
			panic("go.mod not found")
		}
		directory = parent
	}
}
