package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	// mysql driver for sqlx
	_ "github.com/go-sql-driver/mysql"
)

// MySQLOption for MySQL options
type MySQLOption struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// MySQLConfig for configuring MySQL
type MySQLConfig struct {
	Host         string        `mapstructure:"host"`
	Port         uint16        `mapstructure:"port"`
	Database     string        `mapstructure:"database"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	Options      []MySQLOption `mapstructure:"options"`
}

func (c MySQLConfig) optionsString() string {
	var opts []string
	for _, o := range c.Options {
		key := url.QueryEscape(o.Key)
		value := url.QueryEscape(o.Value)
		opts = append(opts, key+"="+value)
	}
	return strings.Join(opts, "&")
}

// DSN returns data source name, timestamps need parseTime=true in the options
func (c MySQLConfig) DSN() string {
	optStr := c.optionsString()
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.Username, c.Password, c.Host, c.Port, c.Database, optStr)
}

// Connect connects to database using sqlx
func (c MySQLConfig) Connect(logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect mysql %s:%d: %w", c.Host, c.Port, err)
	}

	logger.Info("Connected to MySQL",
		zap.Int("max_open_conns", c.MaxOpenConns),
		zap.Int("max_idle_conns", c.MaxIdleConns),
		zap.String("options", c.optionsString()),
	)

	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	return db, nil
}

// MustConnect ...
func (c MySQLConfig) MustConnect() *sqlx.DB {
	db, err := c.Connect(zap.NewNop())
	if err != nil {
		panic(err)
	}
	return db
}
