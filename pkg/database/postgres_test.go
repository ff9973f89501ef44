package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/bus-fleet-api/pkg/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "fleet",
		Password: "secret",
		Name:     "bus_fleet",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=fleet password=secret dbname=bus_fleet sslmode=disable", DSN(cfg))

	cfg.ConnectTimeout = 3 * time.Second
	assert.Contains(t, DSN(cfg), " connect_timeout=3")
}
