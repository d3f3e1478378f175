package integration_tests

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/yaron8/netwatch/generator/config"
	"github.com/yaron8/netwatch/generator/network"
	"github.com/yaron8/netwatch/generator/service"
)

const testSecret = "integration-secret"

type IntegrationTestSuite struct {
	suite.Suite
	apiServer *service.APIServer
	server    *httptest.Server
}

// SetupSuite runs once before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	cfg := config.NewConfig()
	cfg.TickInterval = 100 * time.Millisecond
	cfg.CacheTTL = time.Hour
	cfg.Network.Validators = 30
	cfg.Network.TotalNetworkNodes = 300
	cfg.Network.Seed = 1
	cfg.JWTSecret = testSecret

	state := network.NewState(network.Options{
		Validators:        cfg.Network.Validators,
		SampleSize:        cfg.Network.SampleSize,
		StartRound:        cfg.Network.StartRound,
		TotalNetworkNodes: cfg.Network.TotalNetworkNodes,
		Seed:              cfg.Network.Seed,
	})

	s.apiServer = service.NewAPIServer(cfg, state)
	s.server = httptest.NewServer(s.apiServer.Handler())
	s.T().Logf("generator listening on %s", s.server.URL)
}

// TearDownSuite runs once after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.server.Close()
	_ = s.apiServer.Shutdown(context.Background())
}
