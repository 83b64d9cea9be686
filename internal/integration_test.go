package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/db"
	"candy-bianca-backend/internal/device"
	"candy-bianca-backend/internal/entry"
	"candy-bianca-backend/internal/model"
	"candy-bianca-backend/internal/notification"
	"candy-bianca-backend/internal/poller"
	"candy-bianca-backend/internal/store"
	"candy-bianca-backend/internal/timer"
)

type recordedFinish struct {
	deviceID string
	message  string
}

type finishRecorder struct {
	mu     sync.Mutex
	events []recordedFinish
}

func (r *finishRecorder) Finished(deviceID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedFinish{deviceID, message})
}

type countdownRecorder struct {
	mu      sync.Mutex
	actions []timer.Action
}

func (r *countdownRecorder) CountdownChanged(_ string, action timer.Action, _ timer.Countdown) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

// scriptedWasher answers each read with the next scripted status; a nil
// status answers 503. The last status is repeated once the script runs out.
type scriptedWasher struct {
	mu     sync.Mutex
	script []map[string]any
	next   int
}

func (s *scriptedWasher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/http-read.json" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.next
	if i >= len(s.script) {
		i = len(s.script) - 1
	} else {
		s.next++
	}
	if s.script[i] == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"statusLavatrice": s.script[i]})
}

var dbName = strings.NewReplacer("/", "_", " ", "_")

type harness struct {
	db       *gorm.DB
	poller   *poller.Service
	entry    *entry.Entry
	finishes *finishRecorder
	timers   *countdownRecorder
}

func setup(t *testing.T, script ...map[string]any) *harness {
	t.Helper()

	server := httptest.NewServer(&scriptedWasher{script: script})
	t.Cleanup(server.Close)

	testDB, err := gorm.Open(sqlite.Open("file:"+dbName.Replace(t.Name())+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to the in-memory database")
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	dc := config.DeviceConfig{ID: "bagno", Name: "Bagno", Host: "10.0.0.2", FinishMessage: config.DefaultFinishMessage}
	gormStore := store.NewGormStore(testDB, nil)
	require.NoError(t, gormStore.UpsertDevices(context.Background(), []model.Device{{ID: dc.ID, Name: dc.Name, Host: dc.Host}}))

	e := entry.New(dc)
	svc := poller.NewService(e, device.NewClientWithURL(server.URL, time.Second, nil), gormStore, time.Minute, nil)

	h := &harness{db: testDB, poller: svc, entry: e, finishes: &finishRecorder{}, timers: &countdownRecorder{}}
	svc.Subscribe(notification.NewFinishWatcher(dc.ID, dc.FinishMessage, nil, h.finishes))
	svc.Subscribe(timer.NewTracker(dc.ID, nil, h.timers))
	return h
}

func (h *harness) openCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&model.CycleOpen{}).Where("device_id = ?", "bagno").Count(&n).Error)
	return n
}

func (h *harness) history(t *testing.T) []model.CycleHistory {
	t.Helper()
	var rows []model.CycleHistory
	require.NoError(t, h.db.Where("device_id = ?", "bagno").Order("observed_at").Find(&rows).Error)
	return rows
}

// TestWashCycleLifecycle follows one wash from start to finish and checks the
// database, the finish notification and the countdown at each step.
func TestWashCycleLifecycle(t *testing.T) {
	h := setup(t,
		map[string]any{"MachMd": "1"},
		map[string]any{"MachMd": "2", "PrCode": "65", "Pr": "1", "RemTime": "1800"},
		map[string]any{"MachMd": "2", "PrCode": "65", "Pr": "1", "RemTime": "1200"},
		map[string]any{"MachMd": "7", "PrCode": "65", "Pr": "1", "RemTime": "0"},
	)
	ctx := context.Background()

	var washStartedAt time.Time
	t.Run("Stopped washer has no open cycle", func(t *testing.T) {
		require.NoError(t, h.poller.PollOnce(ctx))
		assert.Equal(t, int64(0), h.openCount(t))
		assert.Empty(t, h.history(t))
	})

	t.Run("Washing opens a cycle", func(t *testing.T) {
		require.NoError(t, h.poller.PollOnce(ctx))

		var open model.CycleOpen
		require.NoError(t, h.db.Where("device_id = ?", "bagno").First(&open).Error)
		assert.Equal(t, 2, open.Mode)
		assert.Equal(t, "Cotone", open.Program)
		assert.Equal(t, 1800, open.RemainingSeconds)
		assert.WithinDuration(t, time.Now(), open.ObservedAt, 5*time.Second)
		washStartedAt = open.ObservedAt
	})

	t.Run("Same mode keeps the open cycle", func(t *testing.T) {
		require.NoError(t, h.poller.PollOnce(ctx))

		var open model.CycleOpen
		require.NoError(t, h.db.Where("device_id = ?", "bagno").First(&open).Error)
		assert.Equal(t, washStartedAt.Unix(), open.ObservedAt.Unix(), "the open cycle is not rewritten while the mode holds")
		assert.Empty(t, h.history(t))
	})

	t.Run("Finished archives the cycle", func(t *testing.T) {
		require.NoError(t, h.poller.PollOnce(ctx))

		assert.Equal(t, int64(0), h.openCount(t))
		rows := h.history(t)
		require.Len(t, rows, 1)
		assert.Equal(t, 2, rows[0].Mode)
		assert.Equal(t, "Cotone", rows[0].Program)
		assert.Equal(t, washStartedAt.Unix(), rows[0].PeriodStart.Unix())
		assert.WithinDuration(t, washStartedAt.Add(30*time.Minute), rows[0].PeriodEnd, time.Second, "period end is the predicted finish")
		assert.True(t, !rows[0].ObservedAt.Before(washStartedAt))
	})

	require.Len(t, h.finishes.events, 1)
	assert.Equal(t, "bagno", h.finishes.events[0].deviceID)
	assert.Equal(t, "La lavasciuga ha terminato il programma Cotone", h.finishes.events[0].message)
	assert.Equal(t, []timer.Action{timer.ActionStart, timer.ActionStart, timer.ActionFinish}, h.timers.actions)
}

func TestWashCycleScenarios(t *testing.T) {
	t.Run("Already finished at startup", func(t *testing.T) {
		h := setup(t,
			map[string]any{"MachMd": "7"},
			map[string]any{"MachMd": "7"},
		)
		require.NoError(t, h.poller.PollOnce(context.Background()))
		require.NoError(t, h.poller.PollOnce(context.Background()))

		assert.Equal(t, int64(0), h.openCount(t))
		assert.Empty(t, h.history(t))
		assert.Empty(t, h.finishes.events)
		assert.Empty(t, h.timers.actions)
	})

	t.Run("Unreachable washer keeps the open cycle", func(t *testing.T) {
		h := setup(t,
			map[string]any{"MachMd": "2", "RemTime": "600"},
			nil,
			map[string]any{"MachMd": "2", "RemTime": "540"},
		)
		ctx := context.Background()

		require.NoError(t, h.poller.PollOnce(ctx))
		assert.Error(t, h.poller.PollOnce(ctx))
		assert.Equal(t, int64(1), h.openCount(t))

		raw, _, err := h.entry.Status()
		assert.Error(t, err)
		assert.Equal(t, 2, raw.IntOr("MachMd", -1), "last known status survives a failed poll")
		assert.False(t, h.entry.Available())

		require.NoError(t, h.poller.PollOnce(ctx))
		assert.True(t, h.entry.Available())
		assert.Equal(t, int64(1), h.openCount(t))
		assert.Empty(t, h.history(t))
	})

	t.Run("Paused then stopped", func(t *testing.T) {
		h := setup(t,
			map[string]any{"MachMd": "2", "PrCode": "4", "Pr": "5", "RemTime": "900"},
			map[string]any{"MachMd": "4", "PrCode": "4", "Pr": "5", "RemTime": "900"},
			map[string]any{"MachMd": "1"},
		)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			require.NoError(t, h.poller.PollOnce(ctx))
		}

		assert.Equal(t, int64(0), h.openCount(t))
		rows := h.history(t)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Mode)
		assert.Equal(t, 4, rows[1].Mode)
		assert.Empty(t, h.finishes.events, "a stopped wash is not a finished wash")
		assert.Equal(t, []timer.Action{timer.ActionStart, timer.ActionStart, timer.ActionCancel}, h.timers.actions)
	})
}
