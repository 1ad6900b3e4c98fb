package config

import (
	"fmt"

	"github.com/QuangTung97/marketing/pkg/cacheclient"
)

// MemcacheConfig ...
type MemcacheConfig struct {
	Host     string `mapstructure:"host"`
	Port     uint16 `mapstructure:"port"`
	NumConns int    `mapstructure:"num_conns"`
}

// Addr ...
func (c MemcacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Connect creates the memcached table of the query cache
func (c MemcacheConfig) Connect() (*cacheclient.Client, error) {
	return cacheclient.New(c.Addr(), c.NumConns)
}
