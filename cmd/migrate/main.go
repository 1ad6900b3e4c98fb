package main

import (
	"fmt"
	"os"

	"github.com/QuangTung97/marketing/config"
	"github.com/QuangTung97/marketing/pkg/migration"

	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	conf := config.Load()
	cmd := migration.MigrateCommand(conf.MySQL.DSN())
	if err := cmd.Execute(); err != nil {
		fmt.Println("[ERROR]", err)
		os.Exit(1)
	}
}
