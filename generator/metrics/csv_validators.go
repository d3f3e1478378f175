package metrics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/yaron8/netwatch/telemetrics"
)

// ValidatorSource provides the full validator table.
type ValidatorSource interface {
	Validators() []telemetrics.Validator
}

type CSVValidatorsResponse struct {
	HTTPResponseCode int
	CSVData          string
	LastModified     time.Time
}

type CSVValidators struct {
	mu                      sync.RWMutex
	source                  ValidatorSource
	snapshot                string
	snapshotLastTimeUpdated time.Time
	snapshotTTL             time.Duration
}

func NewCSVValidators(source ValidatorSource, snapshotTTL time.Duration) *CSVValidators {
	return &CSVValidators{
		source:      source,
		snapshotTTL: snapshotTTL,
	}
}

// GetCSVValidators returns the validator table as CSV, regenerating it once the
// snapshot TTL has passed. If the snapshot is not newer than ifModifiedSince the
// response carries 304 and no data. A zero ifModifiedSince always returns 200.
func (cv *CSVValidators) GetCSVValidators(ifModifiedSince time.Time) (CSVValidatorsResponse, error) {
	data, updated, err := cv.currentSnapshot()
	if err != nil {
		return CSVValidatorsResponse{}, err
	}

	// HTTP dates carry whole seconds only
	if !ifModifiedSince.IsZero() && !updated.Truncate(time.Second).After(ifModifiedSince) {
		return CSVValidatorsResponse{
			HTTPResponseCode: http.StatusNotModified,
			LastModified:     updated,
		}, nil
	}

	return CSVValidatorsResponse{
		HTTPResponseCode: http.StatusOK,
		CSVData:          data,
		LastModified:     updated,
	}, nil
}

func (cv *CSVValidators) currentSnapshot() (string, time.Time, error) {
	cv.mu.RLock()
	if time.Since(cv.snapshotLastTimeUpdated) < cv.snapshotTTL && cv.snapshot != "" {
		data, updated := cv.snapshot, cv.snapshotLastTimeUpdated
		cv.mu.RUnlock()
		return data, updated, nil
	}
	cv.mu.RUnlock()

	cv.mu.Lock()
	defer cv.mu.Unlock()

	// Another goroutine may have refreshed it while we waited for the write lock
	if time.Since(cv.snapshotLastTimeUpdated) < cv.snapshotTTL && cv.snapshot != "" {
		return cv.snapshot, cv.snapshotLastTimeUpdated, nil
	}

	data, err := renderValidators(cv.source.Validators())
	if err != nil {
		return "", time.Time{}, err
	}

	cv.snapshot = data
	cv.snapshotLastTimeUpdated = time.Now()

	return cv.snapshot, cv.snapshotLastTimeUpdated, nil
}

func renderValidators(validators []telemetrics.Validator) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(telemetrics.GetValidatorCSVHeader()); err != nil {
		return "", fmt.Errorf("error writing header: %w", err)
	}

	for _, v := range validators {
		row := []string{
			v.ID,
			v.Status,
			strconv.FormatFloat(v.Uptime7d, 'f', 2, 64),
			strconv.Itoa(v.MissedConsensusRounds24h),
			strconv.FormatFloat(v.TotalStake, 'f', 2, 64),
		}

		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("error writing row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing writer: %w", err)
	}

	return buf.String(), nil
}
