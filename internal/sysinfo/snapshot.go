// Package sysinfo samples CPU, memory, sensor and network metrics through
// gopsutil and delivers them as snapshots on a fixed tick.
package sysinfo

import (
	"math"
	"time"
)

// Temperature is one sensor reading.
type Temperature struct {
	Label   string  `json:"label"`
	Celsius float64 `json:"celsius"`
}

// Snapshot holds the metrics of one tick.
type Snapshot struct {
	Time time.Time `json:"time"`

	// CPUTotal is the machine-wide CPU load in [0, 1].
	CPUTotal float64 `json:"cpu_total"`
	// CPUs holds the load of each logical core in [0, 1].
	CPUs []float64 `json:"cpus"`

	RAMUsed   uint64 `json:"ram_used"`
	RAMTotal  uint64 `json:"ram_total"`
	SwapUsed  uint64 `json:"swap_used"`
	SwapTotal uint64 `json:"swap_total"`

	// Temperatures follow the sensor order enumerated at startup.
	Temperatures []Temperature `json:"temperatures"`

	// NetIn and NetOut are the bytes received and sent since the previous
	// snapshot.
	NetIn  uint64 `json:"net_in"`
	NetOut uint64 `json:"net_out"`

	// Warnings lists the sources that failed during this tick.
	Warnings []string `json:"warnings,omitempty"`
}

// RAMFraction returns used/total RAM, or 0 when the total is unknown.
func (s *Snapshot) RAMFraction() float64 {
	if s.RAMTotal == 0 {
		return 0
	}
	return float64(s.RAMUsed) / float64(s.RAMTotal)
}

// SwapFraction returns used swap relative to the larger of the swap and RAM
// totals, so RAM and swap share one axis.
func (s *Snapshot) SwapFraction() float64 {
	total := max(s.SwapTotal, s.RAMTotal)
	if total == 0 {
		return 0
	}
	f := float64(s.SwapUsed) / float64(total)
	if math.IsNaN(f) {
		return 0
	}
	return f
}
