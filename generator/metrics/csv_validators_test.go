package metrics

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yaron8/netwatch/telemetrics"
)

const (
	testSnapshotTTL   = 2 * time.Second
	testValidatorRows = 10
)

// fakeSource returns a table that changes on every call.
type fakeSource struct {
	calls atomic.Int64
}

func (f *fakeSource) Validators() []telemetrics.Validator {
	n := f.calls.Add(1)
	out := make([]telemetrics.Validator, testValidatorRows)
	for i := range out {
		out[i] = telemetrics.Validator{
			ID:                       fmt.Sprintf("xdc%040d", i),
			Status:                   telemetrics.StatusOnline,
			Uptime7d:                 99.5,
			MissedConsensusRounds24h: i % 3,
			TotalStake:               float64(10_000_000 + n),
		}
	}
	return out
}

// tests that GetCSVValidators returns valid CSV data
func TestGetCSVValidators_BasicFunctionality(t *testing.T) {
	cv := NewCSVValidators(&fakeSource{}, testSnapshotTTL)

	resp, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("GetCSVValidators() returned error: %v", err)
	}

	if resp.HTTPResponseCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.HTTPResponseCode)
	}

	if resp.CSVData == "" {
		t.Fatal("GetCSVValidators() returned empty string")
	}

	reader := csv.NewReader(strings.NewReader(resp.CSVData))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV data: %v", err)
	}

	if len(records) == 0 {
		t.Fatal("CSV data has no records")
	}
}

// tests the CSV format and structure
func TestGetCSVValidators_CSVFormat(t *testing.T) {
	cv := NewCSVValidators(&fakeSource{}, testSnapshotTTL)

	resp, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("GetCSVValidators() returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(resp.CSVData)).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV data: %v", err)
	}

	expectedHeader := telemetrics.GetValidatorCSVHeader()
	header := records[0]
	if len(header) != len(expectedHeader) {
		t.Fatalf("Header has %d columns, expected %d", len(header), len(expectedHeader))
	}
	for i, expected := range expectedHeader {
		if header[i] != expected {
			t.Errorf("Header column %d: got %q, want %q", i, header[i], expected)
		}
	}

	if len(records) != testValidatorRows+1 {
		t.Errorf("Expected %d total rows, got %d", testValidatorRows+1, len(records))
	}

	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) != 5 {
			t.Fatalf("Row %d has %d columns, expected 5", i, len(row))
		}
		if !strings.HasPrefix(row[0], "xdc") {
			t.Errorf("Row %d: id %q doesn't start with 'xdc'", i, row[0])
		}
		if row[2] != "99.50" {
			t.Errorf("Row %d: uptime = %q, want 99.50", i, row[2])
		}
	}
}

// tests that the snapshot is reused within the TTL
func TestGetCSVValidators_SnapshotReturnsIdenticalData(t *testing.T) {
	src := &fakeSource{}
	cv := NewCSVValidators(src, testSnapshotTTL)

	first, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("First call returned error: %v", err)
	}

	second, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("Second call returned error: %v", err)
	}

	if first.CSVData != second.CSVData {
		t.Error("Second call within snapshot duration returned different data (should be cached)")
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
}

// tests that the snapshot is regenerated after the TTL
func TestGetCSVValidators_SnapshotExpires(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping snapshot expiration test in short mode")
	}

	cv := NewCSVValidators(&fakeSource{}, 200*time.Millisecond)

	first, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("First call returned error: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	second, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("Second call after snapshot expiry returned error: %v", err)
	}

	if first.CSVData == second.CSVData {
		t.Error("Call after snapshot expiry returned identical data (should be regenerated)")
	}
	if !second.LastModified.After(first.LastModified) {
		t.Error("LastModified should advance after regeneration")
	}
}

// tests conditional requests
func TestGetCSVValidators_NotModified(t *testing.T) {
	cv := NewCSVValidators(&fakeSource{}, testSnapshotTTL)

	first, err := cv.GetCSVValidators(time.Time{})
	if err != nil {
		t.Fatalf("First call returned error: %v", err)
	}

	resp, err := cv.GetCSVValidators(first.LastModified.Truncate(time.Second))
	if err != nil {
		t.Fatalf("Conditional call returned error: %v", err)
	}
	if resp.HTTPResponseCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", resp.HTTPResponseCode)
	}
	if resp.CSVData != "" {
		t.Error("304 response should carry no data")
	}

	resp, err = cv.GetCSVValidators(first.LastModified.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Conditional call returned error: %v", err)
	}
	if resp.HTTPResponseCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for an older If-Modified-Since", resp.HTTPResponseCode)
	}
}

// tests thread safety with concurrent calls
func TestGetCSVValidators_ConcurrentAccess(t *testing.T) {
	src := &fakeSource{}
	cv := NewCSVValidators(src, testSnapshotTTL)
	numGoroutines := 50
	var wg sync.WaitGroup

	results := make(chan string, numGoroutines)
	errors := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := cv.GetCSVValidators(time.Time{})
			if err != nil {
				errors <- err
				return
			}
			results <- resp.CSVData
		}()
	}

	wg.Wait()
	close(results)
	close(errors)

	for err := range errors {
		t.Errorf("Concurrent call returned error: %v", err)
	}

	var allResults []string
	for data := range results {
		allResults = append(allResults, data)
	}

	if len(allResults) != numGoroutines {
		t.Fatalf("Expected %d results, got %d", numGoroutines, len(allResults))
	}

	for i, result := range allResults {
		if result != allResults[0] {
			t.Errorf("Result %d differs from first result (snapshot should be consistent)", i)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
}

// tests the constructor
func TestNewCSVValidators(t *testing.T) {
	cv := NewCSVValidators(&fakeSource{}, testSnapshotTTL)

	if cv == nil {
		t.Fatal("NewCSVValidators() returned nil")
	}

	if cv.snapshot != "" {
		t.Error("New CSVValidators should have empty snapshot")
	}

	if !cv.snapshotLastTimeUpdated.IsZero() {
		t.Error("New CSVValidators should have zero snapshotLastTimeUpdated")
	}

	if cv.snapshotTTL != testSnapshotTTL {
		t.Errorf("snapshotTTL = %v, want %v", cv.snapshotTTL, testSnapshotTTL)
	}
}
