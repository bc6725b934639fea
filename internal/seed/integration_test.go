//go:build integration

package seed

import (
	"net/url"
	"os"
	"strings"
	"testing"

	"boardapi/internal/config"
	"boardapi/internal/database"
	"boardapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDatabaseURLToConfig(dsn string) (*config.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	password := ""
	if u.User != nil {
		password, _ = u.User.Password()
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return &config.Config{
		DBHost:        u.Hostname(),
		DBPort:        port,
		DBUser:        u.User.Username(),
		DBPassword:    password,
		DBName:        strings.TrimPrefix(u.Path, "/"),
		DBSSLMode:     "disable",
		Env:           "test",
		DBAutoMigrate: true,
	}, nil
}

func TestIntegration_SeedPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration seed test")
	}
	cfg, err := parseDatabaseURLToConfig(dsn)
	require.NoError(t, err)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	require.NoError(t, err)

	_, err = Seed(db, Options{NumUsers: 10, NumBoards: 30, ShouldClean: true, SkipBcrypt: true, BatchSize: 10})
	require.NoError(t, err)

	var boards int64
	require.NoError(t, db.Model(&models.Board{}).Count(&boards).Error)
	assert.EqualValues(t, 30, boards)
}
