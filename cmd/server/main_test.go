package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/signupd/internal/app"
)

func TestConvertDatabaseConfigDefaultsToSQLite(t *testing.T) {
	cfg := &app.Config{}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
}

func TestConvertDatabaseConfigPostgres(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "PostgreSQL"
	cfg.Database.Postgres.Host = " db.internal "
	cfg.Database.Postgres.Port = 5432
	cfg.Database.Postgres.Database = "signupd"
	cfg.Database.Postgres.Username = "signupd"
	cfg.Database.Postgres.Password = "secret"

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "signupd", dbCfg.Name)
}

func TestConvertDatabaseConfigMySQL(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "mysql"
	cfg.Database.MySQL.Host = "db"
	cfg.Database.MySQL.Port = 3306
	cfg.Database.MySQL.Database = "signupd"

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "mysql", dbCfg.Driver)
	require.Equal(t, "db", dbCfg.Host)
	require.Equal(t, 3306, dbCfg.Port)
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadApplicationConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600))

	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
}
