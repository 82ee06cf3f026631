package endpoint

import "time"

// SweepConfig holds the two liveness knobs from spec §4.2.
type SweepConfig struct {
	PingTime         time.Duration
	NoRespondingTime time.Duration
}

// DefaultSweepConfig returns the spec's defaults (60s / 90s).
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		PingTime:         60 * time.Second,
		NoRespondingTime: 90 * time.Second,
	}
}

// Sweep walks the living-time ordering oldest-first and, per spec §4.2:
//   - removes (with cause NO_RESPONDING) any endpoint silent for longer
//     than NoRespondingTime,
//   - pings (no state change) any endpoint silent for longer than
//     PingTime but not yet NoRespondingTime,
//   - stops at the first endpoint newer than PingTime, since everything
//     after it in the ordering is newer still.
//
// ping is called for endpoints that should be probed; removed endpoints
// are deleted from the registry before Sweep returns and are passed to
// removed, if non-nil, after deletion.
func (r *Registry) Sweep(now time.Time, cfg SweepConfig, ping func(*Endpoint), removed func(*Endpoint)) {
	var toRemove []*Endpoint

	r.ForEachOldestFirst(func(ep *Endpoint) bool {
		idle := now.Sub(ep.LastSeen)
		switch {
		case idle > cfg.NoRespondingTime:
			toRemove = append(toRemove, ep)
			return true
		case idle > cfg.PingTime:
			if ping != nil {
				ping(ep)
			}
			return true
		default:
			return false // everything after this is newer; stop
		}
	})

	for _, ep := range toRemove {
		r.Del(ep, CauseNoResponding)
		if removed != nil {
			removed(ep)
		}
	}
}
