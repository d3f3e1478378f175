package integration_tests

import (
	"context"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	dashconfig "github.com/yaron8/netwatch/dashboard/config"
	"github.com/yaron8/netwatch/dashboard/dao"
	"github.com/yaron8/netwatch/dashboard/etl"
	"github.com/yaron8/netwatch/dashboard/feed"
	dashservice "github.com/yaron8/netwatch/dashboard/service"
	"github.com/yaron8/netwatch/dashboard/session"
	genconfig "github.com/yaron8/netwatch/generator/config"
	"github.com/yaron8/netwatch/generator/network"
	genservice "github.com/yaron8/netwatch/generator/service"
	"github.com/yaron8/netwatch/telemetrics"
)

const (
	testSecret    = "integration-secret"
	historyPoints = 5
)

// IntegrationTestSuite runs a generator and a full dashboard pipeline in-process:
// feed -> session -> renderer, the validator ETL, and the dashboard HTTP API.
type IntegrationTestSuite struct {
	suite.Suite
	generator     *genservice.APIServer
	generatorHTTP *httptest.Server
	dashboardHTTP *httptest.Server
	session       *session.Session
	renderer      *frameRecorder
	store         *memStore
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// SetupSuite runs once before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	gcfg := genconfig.NewConfig()
	gcfg.TickInterval = 50 * time.Millisecond
	gcfg.CacheTTL = time.Hour
	gcfg.Network.Validators = 30
	gcfg.Network.TotalNetworkNodes = 300
	gcfg.Network.Seed = 7
	gcfg.JWTSecret = testSecret

	state := network.NewState(network.Options{
		Validators:        gcfg.Network.Validators,
		SampleSize:        gcfg.Network.SampleSize,
		StartRound:        gcfg.Network.StartRound,
		TotalNetworkNodes: gcfg.Network.TotalNetworkNodes,
		Seed:              gcfg.Network.Seed,
	})
	s.generator = genservice.NewAPIServer(gcfg, state)
	s.generatorHTTP = httptest.NewServer(s.generator.Handler())

	s.store = newMemStore()
	s.renderer = &frameRecorder{}
	s.session = session.New(session.Options{
		HistoryPoints: historyPoints,
		Renderer:      s.renderer,
		Store:         s.store,
	})

	client, err := feed.NewClient(feed.Options{
		URL:            s.generatorHTTP.URL,
		ReconnectDelay: 50 * time.Millisecond,
		JWTSecret:      testSecret,
	})
	s.Require().NoError(err)

	dcfg := dashconfig.NewConfig()
	s.dashboardHTTP = httptest.NewServer(dashservice.NewAPIServer(dcfg, s.store, s.session).Handler())

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	events := make(chan feed.Event)
	s.wg.Add(3)
	go func() { defer s.wg.Done(); client.Run(ctx, events) }()
	go func() { defer s.wg.Done(); s.session.Run(ctx, events) }()
	go func() {
		defer s.wg.Done()
		etl.NewETL(s.store, 50*time.Millisecond, s.generatorHTTP.URL).Run(ctx)
	}()
}

// TearDownSuite runs once after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	s.wg.Wait()
	s.dashboardHTTP.Close()
	s.generatorHTTP.Close()
	_ = s.generator.Shutdown(context.Background())
}

type frameRecorder struct {
	mu     sync.Mutex
	frames []session.Frame
}

func (r *frameRecorder) Render(f session.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *frameRecorder) Frames() []session.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Frame(nil), r.frames...)
}

// memStore keeps the same state the Redis DAO would, in memory.
type memStore struct {
	mu         sync.Mutex
	latest     *telemetrics.Snapshot
	samples    []telemetrics.Sample
	validators map[string]telemetrics.Validator
	lastUpdate int64
}

func newMemStore() *memStore {
	return &memStore{validators: map[string]telemetrics.Validator{}}
}

func (m *memStore) SaveLatest(_ context.Context, snap telemetrics.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &snap
	return nil
}

func (m *memStore) AppendSample(_ context.Context, sample telemetrics.Sample, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
	if len(m.samples) > limit {
		m.samples = m.samples[len(m.samples)-limit:]
	}
	return nil
}

func (m *memStore) ReplaceValidators(_ context.Context, validators []telemetrics.Validator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validators = make(map[string]telemetrics.Validator, len(validators))
	for _, v := range validators {
		m.validators[v.ID] = v
	}
	return nil
}

func (m *memStore) SetLastUpdateTime(_ context.Context, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate = ts
	return nil
}

func (m *memStore) GetLatest(context.Context) (telemetrics.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return telemetrics.Snapshot{}, dao.ErrNotFound
	}
	return *m.latest, nil
}

func (m *memStore) GetHistory(context.Context) ([]telemetrics.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]telemetrics.Sample(nil), m.samples...), nil
}

func (m *memStore) GetValidators(context.Context) ([]telemetrics.Validator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]telemetrics.Validator, 0, len(m.validators))
	for _, v := range m.validators {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetValidator(_ context.Context, id string) (telemetrics.Validator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validators[id]
	if !ok {
		return telemetrics.Validator{}, dao.ErrNotFound
	}
	return v, nil
}

func (m *memStore) GetLastUpdateTime(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastUpdate == 0 {
		return 0, dao.ErrNotFound
	}
	return m.lastUpdate, nil
}
