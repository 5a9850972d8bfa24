package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mselser95/solana-cycle-arb/internal/arbitrage"
	"github.com/mselser95/solana-cycle-arb/pkg/cache"
	"github.com/mselser95/solana-cycle-arb/pkg/healthprobe"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"github.com/mselser95/solana-cycle-arb/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]interface{})}
}

func (m *mapCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *mapCache) Set(key string, value interface{}, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return true
}

func (m *mapCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func (m *mapCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]interface{})
}

func (m *mapCache) Close() {}

type recordingPublisher struct {
	mu       sync.Mutex
	types    []string
	payloads []any
	err      error
}

func (r *recordingPublisher) Publish(msgType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, msgType)
	r.payloads = append(r.payloads, payload)
	return r.err
}

func newDetector(t *testing.T) *arbitrage.Detector {
	t.Helper()
	cfg := arbitrage.DefaultConfig()
	cfg.MinProfitThreshold = 0.001
	d, err := arbitrage.New(cfg)
	require.NoError(t, err)
	return d
}

func TestNew_RequiresDetector(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestRun_FullFlow(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	storage := arbitrage.NewMockStorage()
	pub := &recordingPublisher{}
	health := healthprobe.New()

	p, err := New(Config{
		Detector:  newDetector(t),
		Storage:   storage,
		Publisher: pub,
		Health:    health,
		Logger:    logger,
	})
	require.NoError(t, err)

	_, ok := p.Latest()
	assert.False(t, ok)

	res, err := p.Run(context.Background(), arbitrage.CreateTestTriangle())
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.False(t, res.Cached)
	assert.Len(t, res.Report.Opportunities, 1)

	require.Len(t, storage.GetReports(), 1)
	assert.Same(t, res.Report, storage.GetReports()[0])

	require.Len(t, pub.types, 1)
	assert.Equal(t, websocket.MessageTypeDetectionReport, pub.types[0])
	assert.Same(t, res.Report, pub.payloads[0])

	latest, ok := p.Latest()
	require.True(t, ok)
	assert.Same(t, res.Report, latest)

	last, ok := health.LastRun()
	require.True(t, ok)
	assert.Equal(t, res.Report.ID, last.RunID)
	assert.Equal(t, 1, last.Opportunities)
	assert.Empty(t, last.Error)
}

func TestRun_ValidationErrorPropagates(t *testing.T) {
	storage := arbitrage.NewMockStorage()
	pub := &recordingPublisher{}
	health := healthprobe.New()

	p, err := New(Config{Detector: newDetector(t), Storage: storage, Publisher: pub, Health: health})
	require.NoError(t, err)

	edges := arbitrage.CreateTestTriangle()
	edges[2].PriceRatio = -1

	res, err := p.Run(context.Background(), edges)
	require.Error(t, err)
	assert.Nil(t, res)

	var vErr *types.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 2, vErr.Index)

	assert.Empty(t, storage.GetReports(), "no partial run is recorded")
	assert.Empty(t, pub.types)

	last, ok := health.LastRun()
	require.True(t, ok)
	assert.NotEmpty(t, last.Error)
}

func TestRun_SanitizeDropsInvalidEdges(t *testing.T) {
	p, err := New(Config{Detector: newDetector(t), Sanitize: true})
	require.NoError(t, err)

	edges := append(arbitrage.CreateTestTriangle(), types.NewEdge("D", "D", "D", "D", 1, 1))

	res, err := p.Run(context.Background(), edges)
	require.NoError(t, err)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, 6, res.Dropped[0].Index)
	assert.Len(t, res.Report.Opportunities, 1)
}

func TestRun_CacheHitSkipsDetection(t *testing.T) {
	storage := arbitrage.NewMockStorage()
	pub := &recordingPublisher{}

	p, err := New(Config{
		Detector:  newDetector(t),
		Storage:   storage,
		Publisher: pub,
		Cache:     newMapCache(),
	})
	require.NoError(t, err)

	first, err := p.Run(context.Background(), arbitrage.CreateTestTriangle())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), arbitrage.CreateTestTriangle())
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Same(t, first.Report, second.Report)
	assert.Len(t, storage.GetReports(), 1, "cached runs are not recorded twice")
	assert.Len(t, pub.types, 1)

	changed := arbitrage.CreateTestTriangle()
	changed[0] = arbitrage.CreateTestEdge("A", "B", 1.02)
	third, err := p.Run(context.Background(), changed)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.Report.ID, third.Report.ID)
}

func TestRun_RistrettoCache(t *testing.T) {
	c, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig(nil))
	require.NoError(t, err)
	defer c.Close()

	p, err := New(Config{Detector: newDetector(t), Cache: c, CacheTTL: time.Minute})
	require.NoError(t, err)

	first, err := p.Run(context.Background(), arbitrage.CreateTestTriangle())
	require.NoError(t, err)
	c.Wait()

	second, err := p.Run(context.Background(), arbitrage.CreateTestTriangle())
	require.NoError(t, err)
	if !second.Cached {
		t.Skip("Ristretto probabilistic admission - report not admitted")
	}
	assert.Equal(t, first.Report.ID, second.Report.ID)
}

func TestRun_StoreAndPublishFailuresAreNotFatal(t *testing.T) {
	storage := arbitrage.NewMockStorage()
	storage.Err = errors.New("database unavailable")
	pub := &recordingPublisher{err: errors.New("marshal failed")}
	health := healthprobe.New()

	p, err := New(Config{Detector: newDetector(t), Storage: storage, Publisher: pub, Health: health})
	require.NoError(t, err)

	res, err := p.Run(context.Background(), arbitrage.CreateTestTriangle())
	require.NoError(t, err)
	assert.NotNil(t, res.Report)

	last, _ := health.LastRun()
	assert.Equal(t, "database unavailable", last.Error)
}

func TestRun_CancelledContext(t *testing.T) {
	p, err := New(Config{Detector: newDetector(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Run(ctx, arbitrage.CreateTestTriangle())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprint_DependsOnConfig(t *testing.T) {
	a, err := New(Config{Detector: newDetector(t)})
	require.NoError(t, err)

	cfg := arbitrage.DefaultConfig()
	cfg.MaxHops = 3
	d, err := arbitrage.New(cfg)
	require.NoError(t, err)
	b, err := New(Config{Detector: d})
	require.NoError(t, err)

	edges := arbitrage.CreateTestTriangle()
	ka, err := a.fingerprint(edges)
	require.NoError(t, err)
	kb, err := b.fingerprint(edges)
	require.NoError(t, err)

	assert.NotEqual(t, ka, kb)

	again, err := a.fingerprint(arbitrage.CreateTestTriangle())
	require.NoError(t, err)
	assert.Equal(t, ka, again)
}
