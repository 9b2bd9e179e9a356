package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/brokerledger/internal/config"
	"github.com/xelth-com/brokerledger/internal/logger"
)

func TestConnectRejectsUnknownDriver(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqllite"}, logger.NewNop())
	assert.Nil(t, db)
	assert.EqualError(t, err, `unsupported DB_DRIVER "sqllite"`)
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	}, logger.NewNop())
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
