package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

type fakeStatus struct {
	mu     sync.Mutex
	status enums.ConfigurationStatus
	err    error
	reads  int
}

func (f *fakeStatus) GetStatus(context.Context, uuid.UUID) (enums.ConfigurationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.status, f.err
}

func (f *fakeStatus) set(status enums.ConfigurationStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

type fakeWriter struct {
	mu      sync.Mutex
	rows    map[enums.CategoryGroup][]models.ConfigurationRow
	writes  int
	totals  decimal.Decimal
	failErr error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{rows: make(map[enums.CategoryGroup][]models.ConfigurationRow)}
}

func (f *fakeWriter) ReplaceRows(_ context.Context, _ uuid.UUID, group enums.CategoryGroup, rows []models.ConfigurationRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.writes++
	f.rows[group] = append([]models.ConfigurationRow(nil), rows...)
	return nil
}

func (f *fakeWriter) UpdateTotals(_ context.Context, _ uuid.UUID, _, _, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals = price
	return nil
}

func (f *fakeWriter) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeWriter) group(group enums.CategoryGroup) []models.ConfigurationRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[group]
}

type recordedNotification struct {
	level   enums.NotificationLevel
	message string
}

type fakeSink struct {
	mu    sync.Mutex
	items []recordedNotification
}

func (f *fakeSink) Notify(_ context.Context, level enums.NotificationLevel, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, recordedNotification{level: level, message: message})
}

func (f *fakeSink) list() []recordedNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedNotification(nil), f.items...)
}

type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryRedis) ReleaseOwned(_ context.Context, key, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[key] != owner {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

var errWriteFailed = errors.New("connection reset")
