// Package history keeps the rolling window of TPS/Gini samples that drives the charts.
package history

// DefaultCapacity is the number of points kept when no capacity is given.
const DefaultCapacity = 50

// Series is the chronological content of a Window. The three slices are index-aligned
// and always have the same length.
type Series struct {
	Labels []string  `json:"labels"`
	TPS    []float64 `json:"tps"`
	Gini   []float64 `json:"gini"`
}

func (s Series) Len() int {
	return len(s.Labels)
}

// Window is a fixed-capacity FIFO of (label, tps, gini) samples. Once full, every
// Record evicts the oldest sample. Not safe for concurrent use; the session that
// owns it processes one update at a time.
type Window struct {
	labels []string
	tps    []float64
	gini   []float64
	head   int // index of the oldest sample
	count  int
}

// New creates a Window holding at most capacity samples.
func New(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{
		labels: make([]string, capacity),
		tps:    make([]float64, capacity),
		gini:   make([]float64, capacity),
	}
}

// Record appends one sample, evicting the oldest when the window is full.
func (w *Window) Record(label string, tps, gini float64) {
	capacity := len(w.labels)
	if w.count == capacity {
		w.head = (w.head + 1) % capacity
		w.count--
	}
	pos := (w.head + w.count) % capacity
	w.labels[pos] = label
	w.tps[pos] = tps
	w.gini[pos] = gini
	w.count++
}

func (w *Window) Len() int {
	return w.count
}

func (w *Window) Cap() int {
	return len(w.labels)
}

// Labels returns the sample labels oldest first.
func (w *Window) Labels() []string {
	return ordered(w, w.labels)
}

// TPS returns the TPS values oldest first.
func (w *Window) TPS() []float64 {
	return ordered(w, w.tps)
}

// Gini returns the Gini values oldest first.
func (w *Window) Gini() []float64 {
	return ordered(w, w.gini)
}

// Series copies the whole window. The caller owns the returned slices.
func (w *Window) Series() Series {
	return Series{
		Labels: w.Labels(),
		TPS:    w.TPS(),
		Gini:   w.Gini(),
	}
}

func ordered[T any](w *Window, ring []T) []T {
	out := make([]T, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = ring[(w.head+i)%len(ring)]
	}
	return out
}
