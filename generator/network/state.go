// Package network simulates the state of an XDPoS-style validator network and
// produces the snapshots pushed to dashboards.
package network

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/metrics"
	"github.com/yaron8/netwatch/telemetrics"
)

const (
	roundTimeWindow   = 100
	initialRoundTime  = 2.0
	finalityRounds    = 3
	nakamotoConsensus = 72
	haltingFraction   = 1.0 / 3

	initialGini = 0.45
	minGini     = 0.4
	maxGini     = 0.5

	safetyViolationChance   = 0.0005
	livenessViolationChance = 0.01
	missedRoundChance       = 0.02
	slashPenalty            = 0.95

	// Missed rounds and uptime are reset every resetEveryRounds rounds.
	resetEveryRounds = 500
)

type Options struct {
	Validators        int
	SampleSize        int
	StartRound        int64
	TotalNetworkNodes int
	Seed              int64
}

// State is the simulated network. All methods are safe for concurrent use.
type State struct {
	mu  sync.Mutex
	rng *rand.Rand

	round             int64
	roundTimes        []float64
	participants      map[string]struct{}
	totalNetworkNodes int
	masterNodes       int
	gini              float64

	safetyViolations   int
	livenessViolations int
	blameMessages      int

	validators []telemetrics.Validator
	sampleSize int

	logger *slog.Logger
}

func NewState(opts Options) *State {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)))

	roundTimes := make([]float64, roundTimeWindow)
	for i := range roundTimes {
		roundTimes[i] = initialRoundTime
	}

	s := &State{
		rng:               rng,
		round:             opts.StartRound,
		roundTimes:        roundTimes,
		participants:      make(map[string]struct{}),
		totalNetworkNodes: opts.TotalNetworkNodes,
		masterNodes:       opts.Validators,
		gini:              initialGini,
		sampleSize:        opts.SampleSize,
		logger:            logi.GetLogger(),
	}
	s.validators = generateValidators(rng, opts.Validators)
	return s
}

// Step advances the network by one consensus round.
func (s *State) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.round++
	copy(s.roundTimes, s.roundTimes[1:])
	s.roundTimes[len(s.roundTimes)-1] = 1.8 + s.rng.Float64()*0.4

	txCount := s.randInt(10, 50)
	for i := 0; i < txCount; i++ {
		s.participants[randomAddress(s.rng)] = struct{}{}
	}

	s.totalNetworkNodes += s.randInt(-5, 5)
	if s.totalNetworkNodes < s.masterNodes {
		s.totalNetworkNodes = s.masterNodes
	}

	s.gini += (s.rng.Float64() - 0.5) * 0.001
	s.gini = clamp(s.gini, minGini, maxGini)

	if s.rng.Float64() < safetyViolationChance {
		s.safetyViolations++
		s.logger.Warn("simulated safety violation", "round", s.round)
		if len(s.validators) > 0 {
			v := &s.validators[s.rng.IntN(len(s.validators))]
			v.Status = telemetrics.StatusSlashed
			v.TotalStake *= slashPenalty
			s.logger.Warn("validator slashed", "validator", v.ID, "stake", v.TotalStake)
		}
	}

	if s.rng.Float64() < livenessViolationChance {
		s.livenessViolations++
		s.blameMessages += s.randInt(1, 5)
		s.logger.Warn("simulated liveness violation", "round", s.round, "blame_total", s.blameMessages)
	}

	for i := range s.validators {
		s.stepValidator(&s.validators[i])
	}
}

// Snapshot reports the current state. It does not advance the network.
func (s *State) Snapshot() telemetrics.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	avg := s.avgRoundTime()
	tps := float64(s.randInt(50, 200)) / avg

	return telemetrics.Snapshot{
		NetworkHealth: telemetrics.NetworkHealth{
			LatestConsensusRound: s.round,
			AvgRoundTime:         metrics.Round(avg, 2),
			TransactionFinality:  metrics.Round(avg*finalityRounds, 2),
			RealtimeTPS:          metrics.Round(tps, 1),
			ActiveParticipants:   len(s.participants),
			TotalNetworkNodes:    s.totalNetworkNodes,
			TotalMasterNodes:     s.masterNodes,
		},
		DecentralizationSecurity: telemetrics.DecentralizationSecurity{
			NakamotoConsensus:     nakamotoConsensus,
			NakamotoStake:         metrics.NakamotoCoefficient(s.stakesLocked(), haltingFraction),
			SafetyViolations24h:   s.safetyViolations,
			LivenessViolations24h: s.livenessViolations,
			TotalBlameMessages24h: s.blameMessages,
			GiniCoefficient:       metrics.Round(s.gini, 4),
		},
		ValidatorOperations: s.sampleValidators(),
	}
}

// ResetDailyCounters zeroes the rolling 24h violation counters.
func (s *State) ResetDailyCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("resetting 24h counters",
		"safety", s.safetyViolations,
		"liveness", s.livenessViolations,
		"blame", s.blameMessages)
	s.safetyViolations = 0
	s.livenessViolations = 0
	s.blameMessages = 0
}

// Validators returns a copy of every validator.
func (s *State) Validators() []telemetrics.Validator {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetrics.Validator, len(s.validators))
	copy(out, s.validators)
	return out
}

// Distribution summarizes how stake is spread across validators.
type Distribution struct {
	Validators    int     `json:"validators"`
	TotalStake    float64 `json:"total_stake"`
	StakeGini     float64 `json:"stake_gini"`
	NakamotoStake int     `json:"nakamoto_stake"`
}

func (s *State) Distribution() Distribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	stakes := s.stakesLocked()
	total := 0.0
	for _, st := range stakes {
		total += st
	}
	return Distribution{
		Validators:    len(stakes),
		TotalStake:    metrics.Round(total, 2),
		StakeGini:     metrics.Round(metrics.Gini(stakes), 4),
		NakamotoStake: metrics.NakamotoCoefficient(stakes, haltingFraction),
	}
}

func (s *State) avgRoundTime() float64 {
	sum := 0.0
	for _, rt := range s.roundTimes {
		sum += rt
	}
	return sum / float64(len(s.roundTimes))
}

func (s *State) stakesLocked() []float64 {
	stakes := make([]float64, len(s.validators))
	for i, v := range s.validators {
		stakes[i] = v.TotalStake
	}
	return stakes
}

func (s *State) sampleValidators() []telemetrics.Validator {
	n := min(s.sampleSize, len(s.validators))
	out := make([]telemetrics.Validator, 0, n)
	for _, idx := range s.rng.Perm(len(s.validators))[:n] {
		out = append(out, s.validators[idx])
	}
	return out
}

// randInt returns a uniform int in [lo, hi].
func (s *State) randInt(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func randomAddress(rng *rand.Rand) string {
	return fmt.Sprintf("xdc%016x%016x%08x", rng.Uint64(), rng.Uint64(), rng.Uint32())
}
