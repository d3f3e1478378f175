package telemetrics

import "encoding/json"

// EventNetworkUpdate is the only event pushed by the generator.
const EventNetworkUpdate = "network_update"

// Validator statuses produced by the generator. Clients must tolerate any other value.
const (
	StatusOnline  = "online"
	StatusWarning = "warning"
	StatusOffline = "offline"
	StatusSlashed = "slashed"
)

// Snapshot is one network_update payload.
type Snapshot struct {
	NetworkHealth            NetworkHealth            `json:"network_health"`
	DecentralizationSecurity DecentralizationSecurity `json:"decentralization_security"`
	ValidatorOperations      []Validator              `json:"validator_operations"`
}

type NetworkHealth struct {
	LatestConsensusRound int64   `json:"latest_consensus_round"`
	AvgRoundTime         float64 `json:"avg_round_time"`
	TransactionFinality  float64 `json:"transaction_finality"`
	RealtimeTPS          float64 `json:"realtime_tps"`
	ActiveParticipants   int     `json:"active_participants"`
	TotalNetworkNodes    int     `json:"total_network_nodes"`
	TotalMasterNodes     int     `json:"total_master_nodes"`
}

type DecentralizationSecurity struct {
	NakamotoConsensus     int     `json:"nakamoto_consensus"`
	NakamotoStake         int     `json:"nakamoto_stake"`
	SafetyViolations24h   int     `json:"safety_violations_24h"`
	LivenessViolations24h int     `json:"liveness_violations_24h"`
	TotalBlameMessages24h int     `json:"total_blame_messages_24h"`
	GiniCoefficient       float64 `json:"gini_coefficient"`
}

type Validator struct {
	ID                       string  `json:"id"`
	Status                   string  `json:"status"`
	Uptime7d                 float64 `json:"uptime_7d"`
	MissedConsensusRounds24h int     `json:"missed_consensus_rounds_24h"`
	TotalStake               float64 `json:"total_stake"`
}

// Envelope frames every websocket text message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope for the given event.
func NewEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// Sample is one point of the rolling TPS/Gini history.
type Sample struct {
	Label string  `json:"label"`
	TPS   float64 `json:"tps"`
	Gini  float64 `json:"gini"`
}

func GetValidatorCSVHeader() []string {
	return []string{
		"id",
		"status",
		"uptime_7d",
		"missed_consensus_rounds_24h",
		"total_stake"}
}
