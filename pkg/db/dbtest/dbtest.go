// Package dbtest opens throwaway SQLite databases carrying the application schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// Open returns an isolated in-memory database with all models migrated.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CatalogItem{}, &models.PoolConfiguration{}, &models.ConfigurationRow{}))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// shared-cache sqlite reports "table is locked" under concurrent writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// MustCreateItem inserts a catalog item priced at cost+margin.
func MustCreateItem(t *testing.T, conn *gorm.DB, category enums.ExtraCategory, name string, cost, margin int64, position int) models.CatalogItem {
	t.Helper()
	item := models.CatalogItem{
		ID:       uuid.New(),
		Name:     name,
		SKU:      fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Category: category,
		Cost:     decimal.NewFromInt(cost),
		Margin:   decimal.NewFromInt(margin),
		Price:    decimal.NewFromInt(cost + margin),
		Position: position,
		IsActive: true,
	}
	require.NoError(t, conn.Create(&item).Error)
	return item
}

// MustCreateConfiguration inserts a draft configuration.
func MustCreateConfiguration(t *testing.T, conn *gorm.DB) models.PoolConfiguration {
	t.Helper()
	cfg := models.PoolConfiguration{
		ID:           uuid.New(),
		CustomerName: "Test Customer",
		PoolName:     "Backyard",
		Status:       enums.ConfigurationStatusDraft,
	}
	require.NoError(t, conn.Create(&cfg).Error)
	return cfg
}
