package tui

import (
	"log/slog"

	"github.com/yaron8/netwatch/dashboard/session"
	"github.com/yaron8/netwatch/logi"
)

// LogRenderer writes a one-line summary of each frame. Used when no terminal is attached.
type LogRenderer struct {
	logger *slog.Logger
}

func NewLogRenderer() *LogRenderer {
	return &LogRenderer{logger: logi.GetLogger()}
}

func (r *LogRenderer) Render(frame session.Frame) {
	if !frame.HasData {
		r.logger.Info("dashboard status", "connected", frame.Connected)
		return
	}
	n := frame.Series.Len()
	r.logger.Info("dashboard frame",
		"connected", frame.Connected,
		"updated", frame.LastUpdated,
		"round", frame.KPIs.LatestConsensusRound,
		"tps", frame.Series.TPS[n-1],
		"gini", frame.Series.Gini[n-1],
		"points", n,
		"validators", len(frame.Rows))
}
