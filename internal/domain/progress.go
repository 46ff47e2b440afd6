package domain

import (
	"sync"
	"time"
)

// ScanProgress is the live state of the current (or most recent) scan. The
// scanner is the only writer; status handlers and the websocket hub read
// concurrent snapshots. Each new scan resets the record via Start.
type ScanProgress struct {
	mu sync.RWMutex

	running      bool
	totalRealms  int
	processed    int
	currentRealm string
	startedAt    time.Time
	updatedAt    time.Time
}

// ProgressSnapshot is a point-in-time copy of ScanProgress safe to hand to
// readers. ETASeconds is (elapsed/processed)*(total-processed) once at least
// one realm has been processed, else 0.
type ProgressSnapshot struct {
	Running         bool      `json:"running"`
	TotalRealms     int       `json:"total_realms"`
	ProcessedRealms int       `json:"processed_realms"`
	CurrentRealm    string    `json:"current_realm"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	ETASeconds      float64   `json:"eta_seconds"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Start resets the record for a new scan over total realms.
func (p *ScanProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.running = true
	p.totalRealms = total
	p.processed = 0
	p.currentRealm = ""
	p.startedAt = now
	p.updatedAt = now
}

// Advance records that one more realm has been fetched. Processed counts are
// monotonic within a scan.
func (p *ScanProgress) Advance(realm string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentRealm = realm
	p.processed++
	p.updatedAt = time.Now()
}

// Finish marks the scan as no longer running. The scanner calls this on every
// exit path so observers never see a stuck running state.
func (p *ScanProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.updatedAt = time.Now()
}

// Running reports whether a scan is currently in flight.
func (p *ScanProgress) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Snapshot returns a consistent copy of the current state with elapsed time
// and the remaining-time estimate computed.
func (p *ScanProgress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var elapsed float64
	if !p.startedAt.IsZero() {
		end := time.Now()
		if !p.running {
			end = p.updatedAt
		}
		elapsed = end.Sub(p.startedAt).Seconds()
	}

	var eta float64
	if p.running && p.processed > 0 {
		eta = (elapsed / float64(p.processed)) * float64(p.totalRealms-p.processed)
	}

	return ProgressSnapshot{
		Running:         p.running,
		TotalRealms:     p.totalRealms,
		ProcessedRealms: p.processed,
		CurrentRealm:    p.currentRealm,
		ElapsedSeconds:  elapsed,
		ETASeconds:      eta,
		StartedAt:       p.startedAt,
		UpdatedAt:       p.updatedAt,
	}
}
