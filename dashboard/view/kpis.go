package view

import (
	"strconv"

	"github.com/yaron8/netwatch/telemetrics"
)

// KPIs holds every formatted widget value of the health and security tabs.
type KPIs struct {
	LatestConsensusRound string `json:"latest_consensus_round"`
	AvgRoundTime         string `json:"avg_round_time"`
	TransactionFinality  string `json:"transaction_finality"`
	ActiveParticipants   string `json:"active_participants"`
	TotalNetworkNodes    string `json:"total_network_nodes"`
	TotalMasterNodes     string `json:"total_master_nodes"`

	NakamotoConsensus     string `json:"nakamoto_consensus"`
	NakamotoStake         string `json:"nakamoto_stake"`
	SafetyViolations24h   string `json:"safety_violations_24h"`
	LivenessViolations24h string `json:"liveness_violations_24h"`
	TotalBlameMessages24h string `json:"total_blame_messages_24h"`
}

// ValidatorRow is one formatted line of the validator table.
type ValidatorRow struct {
	Status    StatusDisplay `json:"status"`
	ID        string        `json:"id"`
	Uptime    string        `json:"uptime"`
	Missed    string        `json:"missed"`
	Highlight bool          `json:"highlight"` // missed rounds > 0
	Stake     string        `json:"stake"`
}

func BuildKPIs(snap telemetrics.Snapshot) KPIs {
	health := snap.NetworkHealth
	security := snap.DecentralizationSecurity
	return KPIs{
		LatestConsensusRound: Count(health.LatestConsensusRound),
		AvgRoundTime:         Seconds(health.AvgRoundTime),
		TransactionFinality:  Seconds(health.TransactionFinality),
		ActiveParticipants:   Count(int64(health.ActiveParticipants)),
		TotalNetworkNodes:    Count(int64(health.TotalNetworkNodes)),
		TotalMasterNodes:     Count(int64(health.TotalMasterNodes)),

		NakamotoConsensus:     strconv.Itoa(security.NakamotoConsensus),
		NakamotoStake:         strconv.Itoa(security.NakamotoStake),
		SafetyViolations24h:   strconv.Itoa(security.SafetyViolations24h),
		LivenessViolations24h: strconv.Itoa(security.LivenessViolations24h),
		TotalBlameMessages24h: strconv.Itoa(security.TotalBlameMessages24h),
	}
}

// BuildRows formats validators in their received order.
func BuildRows(validators []telemetrics.Validator) []ValidatorRow {
	rows := make([]ValidatorRow, len(validators))
	for i, v := range validators {
		rows[i] = ValidatorRow{
			Status:    Status(v.Status),
			ID:        ShortID(v.ID),
			Uptime:    Percent(v.Uptime7d),
			Missed:    strconv.Itoa(v.MissedConsensusRounds24h),
			Highlight: v.MissedConsensusRounds24h > 0,
			Stake:     Stake(v.TotalStake),
		}
	}
	return rows
}
