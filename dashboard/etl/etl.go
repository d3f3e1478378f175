package etl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/telemetrics"
)

// Store receives the full validator table after each successful sync.
type Store interface {
	ReplaceValidators(ctx context.Context, validators []telemetrics.Validator) error
	SetLastUpdateTime(ctx context.Context, ts int64) error
}

// ETL mirrors the generator's validator table into the store. The generator answers
// 304 while its cached table is unchanged, so most ticks transfer nothing.
type ETL struct {
	store        Store
	interval     time.Duration
	generatorURL string
	httpClient   *http.Client
	lastModified string
	logger       *slog.Logger
}

func NewETL(store Store, interval time.Duration, generatorURL string) *ETL {
	return &ETL{
		store:        store,
		interval:     interval,
		generatorURL: strings.TrimRight(generatorURL, "/"),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logi.GetLogger(),
	}
}

// Run syncs immediately and then every interval until ctx is done.
func (etl *ETL) Run(ctx context.Context) {
	etl.logger.Info("ETL starting", "interval", etl.interval, "generator_url", etl.generatorURL)
	ticker := time.NewTicker(etl.interval)
	defer ticker.Stop()

	for {
		if err := etl.UpdateValidators(ctx); err != nil && ctx.Err() == nil {
			etl.logger.Error("Error updating validators", "error", err)
		}

		select {
		case <-ctx.Done():
			etl.logger.Info("ETL stopped")
			return
		case <-ticker.C:
		}
	}
}

// UpdateValidators performs one conditional fetch of /validators.csv.
func (etl *ETL) UpdateValidators(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, etl.generatorURL+"/validators.csv", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if etl.lastModified != "" {
		req.Header.Set("If-Modified-Since", etl.lastModified)
	}

	resp, err := etl.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch validators: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		// No logging on hot path - cache hit is normal
		return nil
	case http.StatusOK:
		etl.logger.Debug("Fetching new validator table from generator")
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	validators, err := etl.parseValidators(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read validators: %w", err)
	}
	if err := etl.store.ReplaceValidators(ctx, validators); err != nil {
		return fmt.Errorf("failed to store validators: %w", err)
	}

	updated := time.Now()
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			updated = t
		}
		etl.lastModified = lm
	}
	if err := etl.store.SetLastUpdateTime(ctx, updated.Unix()); err != nil {
		return fmt.Errorf("failed to set last update time: %w", err)
	}

	etl.logger.Info("Validators synced", "count", len(validators), "last_modified", etl.lastModified)
	return nil
}

func (etl *ETL) parseValidators(body io.Reader) ([]telemetrics.Validator, error) {
	scanner := bufio.NewScanner(body)

	// Skip the header line
	if !scanner.Scan() {
		return nil, scanner.Err()
	}

	var validators []telemetrics.Validator
	lineNumber := 1
	errorCount := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		v, err := parseCSVLine(line)
		if err != nil {
			errorCount++
			etl.logger.Error("Error parsing line", "line_number", lineNumber, "error", err)
			continue
		}
		validators = append(validators, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if errorCount > 0 {
		etl.logger.Warn("Skipped malformed validator lines", "errors", errorCount)
	}
	return validators, nil
}

// parseCSVLine parses one validator row.
// Expected format: id,status,uptime_7d,missed_consensus_rounds_24h,total_stake
func parseCSVLine(line string) (telemetrics.Validator, error) {
	fields := strings.Split(line, ",")
	if len(fields) != len(telemetrics.GetValidatorCSVHeader()) {
		return telemetrics.Validator{}, fmt.Errorf("expected %d fields, got %d", len(telemetrics.GetValidatorCSVHeader()), len(fields))
	}

	uptime, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return telemetrics.Validator{}, fmt.Errorf("invalid uptime_7d: %w", err)
	}

	missed, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return telemetrics.Validator{}, fmt.Errorf("invalid missed_consensus_rounds_24h: %w", err)
	}

	stake, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return telemetrics.Validator{}, fmt.Errorf("invalid total_stake: %w", err)
	}

	return telemetrics.Validator{
		ID:                       strings.TrimSpace(fields[0]),
		Status:                   strings.TrimSpace(fields[1]),
		Uptime7d:                 uptime,
		MissedConsensusRounds24h: missed,
		TotalStake:               stake,
	}, nil
}
