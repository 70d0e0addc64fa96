// ABOUTME: Clock synchronization with drift compensation
// ABOUTME: Tracks both offset AND drift to handle clock frequency differences
package sync

import (
	"log"
	"sync"
	"time"
)

// Sample rejection thresholds.
const (
	maxSampleRTT      = 100000 // µs; discard congested exchanges
	maxResidual       = 50000  // µs; larger suggests a clock jump
	goodQualityRTT    = 50000  // µs
	staleSyncInterval = 5 * time.Second
)

// ClockSync estimates the server clock from client/time exchanges. It
// tracks both the offset and the drift rate so the estimate stays valid
// between exchanges even when the two crystals tick at different speeds.
type ClockSync struct {
	mu             sync.RWMutex
	offset         int64   // current offset in microseconds (server - client)
	drift          float64 // clock drift rate (dimensionless: µs/µs)
	rtt            int64   // latest round-trip time
	quality        Quality
	lastSync       time.Time
	lastSyncMicros int64 // client time (µs) when offset/drift were last updated
	sampleCount    int
	smoothingRate  float64
}

// Quality represents sync quality
type Quality int

const (
	QualityGood Quality = iota
	QualityDegraded
	QualityLost
)

// NewClockSync creates a new clock synchronizer
func NewClockSync() *ClockSync {
	return &ClockSync{
		smoothingRate: 0.1, // 10% weight to new samples
		quality:       QualityLost,
	}
}

// ProcessSyncResponse folds one t1..t4 exchange into the estimate.
// t1/t4 are client transmit/receive times, t2/t3 the server's receive and
// transmit times, all in microseconds.
func (cs *ClockSync) ProcessSyncResponse(t1, t2, t3, t4 int64) {
	rtt, measuredOffset := calculateOffset(t1, t2, t3, t4)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.rtt = rtt
	cs.lastSync = time.Now()

	if rtt > maxSampleRTT {
		log.Printf("Discarding sync sample: high RTT %dµs", rtt)
		return
	}

	// First sync: initialize offset, no drift yet.
	if cs.sampleCount == 0 {
		cs.offset = measuredOffset
		cs.lastSyncMicros = t4
		cs.sampleCount++
		cs.quality = QualityGood
		return
	}

	dt := float64(t4 - cs.lastSyncMicros)
	if dt <= 0 {
		log.Printf("Discarding sync sample: non-monotonic time")
		return
	}

	// Second sync: bootstrap the drift estimate.
	if cs.sampleCount == 1 {
		cs.drift = float64(measuredOffset-cs.offset) / dt
		cs.offset = measuredOffset
		cs.lastSyncMicros = t4
		cs.sampleCount++
		cs.quality = QualityGood
		return
	}

	// Subsequent syncs: predict via drift, then correct with fixed gain.
	predictedOffset := cs.offset + int64(cs.drift*dt)
	residual := measuredOffset - predictedOffset

	if residual > maxResidual || residual < -maxResidual {
		log.Printf("Discarding sync sample: large residual %dµs (possible clock jump)", residual)
		return
	}

	cs.offset = predictedOffset + int64(cs.smoothingRate*float64(residual))
	cs.drift += cs.smoothingRate * float64(residual) / dt
	cs.lastSyncMicros = t4
	cs.sampleCount++

	if rtt < goodQualityRTT {
		cs.quality = QualityGood
	} else {
		cs.quality = QualityDegraded
	}
}

// calculateOffset computes RTT and clock offset from one exchange.
func calculateOffset(t1, t2, t3, t4 int64) (rtt, offset int64) {
	rtt = (t4 - t1) - (t3 - t2)
	// Positive offset = server ahead of client.
	offset = ((t2 - t1) + (t3 - t4)) / 2
	return
}

// Synced reports whether at least one exchange has been accepted.
func (cs *ClockSync) Synced() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.sampleCount > 0
}

// GetStats returns sync statistics
func (cs *ClockSync) GetStats() (offset, rtt int64, quality Quality) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.offset, cs.rtt, cs.quality
}

// Drift returns the estimated drift rate in µs/µs.
func (cs *ClockSync) Drift() float64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.drift
}

// CheckQuality updates quality based on time since last sync
func (cs *ClockSync) CheckQuality() Quality {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if time.Since(cs.lastSync) > staleSyncInterval {
		cs.quality = QualityLost
	}
	return cs.quality
}

// ServerToLocalTime converts a server timestamp (µs) to local wall time.
func (cs *ClockSync) ServerToLocalTime(serverTime int64) time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	// Before the first sync, assume server time = client time.
	if cs.sampleCount == 0 {
		return time.Unix(0, serverTime*1000)
	}

	// Inverse of: server = client + offset + drift*(client - lastSync)
	numerator := float64(serverTime) - float64(cs.offset) + cs.drift*float64(cs.lastSyncMicros)
	clientMicros := int64(numerator / (1.0 + cs.drift))
	return time.Unix(0, clientMicros*1000)
}

// ClientMicros returns raw client Unix epoch time in microseconds.
func ClientMicros() int64 {
	return time.Now().UnixMicro()
}
