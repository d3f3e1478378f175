package network

import (
	"math/rand/v2"

	"github.com/yaron8/netwatch/metrics"
	"github.com/yaron8/netwatch/telemetrics"
)

const (
	baseStake       = 10_000_000
	stakeSpread     = 2_000_000
	minUptime       = 90.0
	offlineUptime   = 95.0
	offlineMissed   = 5
	freshUptimeBase = 98.0
)

func generateValidators(rng *rand.Rand, count int) []telemetrics.Validator {
	validators := make([]telemetrics.Validator, count)
	for i := range validators {
		validators[i] = telemetrics.Validator{
			ID:         randomAddress(rng),
			Status:     telemetrics.StatusOnline,
			Uptime7d:   metrics.Round(freshUptime(rng), 2),
			TotalStake: baseStake + (rng.Float64()-0.5)*stakeSpread,
		}
	}
	return validators
}

// stepValidator applies one round of performance drift. Slashed validators are frozen.
func (s *State) stepValidator(v *telemetrics.Validator) {
	if v.Status == telemetrics.StatusSlashed {
		return
	}

	if s.rng.Float64() < missedRoundChance {
		v.MissedConsensusRounds24h++
		v.Uptime7d = max(minUptime, v.Uptime7d-(0.01+s.rng.Float64()*0.09))
	}

	if s.round%resetEveryRounds == 0 {
		v.MissedConsensusRounds24h = 0
		v.Uptime7d = freshUptime(s.rng)
	}

	v.Status = classify(v.MissedConsensusRounds24h, v.Uptime7d)
}

func classify(missed int, uptime float64) string {
	switch {
	case missed > offlineMissed || uptime < offlineUptime:
		return telemetrics.StatusOffline
	case missed > 0:
		return telemetrics.StatusWarning
	default:
		return telemetrics.StatusOnline
	}
}

func freshUptime(rng *rand.Rand) float64 {
	return freshUptimeBase + rng.Float64()*2
}
