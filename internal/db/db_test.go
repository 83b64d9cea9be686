package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/model"
)

func TestInit_SQLite(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{DSN: "sqlite::memory:", EnableTimescale: true}, zap.NewNop())
	require.NoError(t, err)

	m := gormDB.Migrator()
	for _, table := range []any{
		&model.Device{},
		&model.CycleOpen{},
		&model.CycleHistory{},
		&model.ActionLog{},
		&model.PushSubscription{},
	} {
		assert.True(t, m.HasTable(table))
	}
	assert.True(t, m.HasTable("subscription_device_mapping"))
}
