package sysinfo

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gonet "github.com/shirou/gopsutil/v3/net"
	log "github.com/sirupsen/logrus"
)

// Sampler reads one Snapshot per call. It keeps the previous network
// counters to turn them into per-tick deltas, so a Sampler must not be shared
// between pollers.
type Sampler struct {
	logger log.FieldLogger

	sensors    []string
	enumerated bool

	prevSent uint64
	prevRecv uint64
	primed   bool

	// Overridable metric sources for testing.
	now           func() time.Time
	cpuCounts     func(ctx context.Context, logical bool) (int, error)
	cpuPercent    func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)
	temperatures  func(ctx context.Context) ([]host.TemperatureStat, error)
	ioCounters    func(ctx context.Context, pernic bool) ([]gonet.IOCountersStat, error)
}

// NewSampler creates a Sampler backed by gopsutil.
// If logger is nil, the standard logrus logger is used.
func NewSampler(logger log.FieldLogger) *Sampler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Sampler{
		logger:        logger.WithField("component", "sampler"),
		now:           time.Now,
		cpuCounts:     cpu.CountsWithContext,
		cpuPercent:    cpu.PercentWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		swapMemory:    mem.SwapMemoryWithContext,
		temperatures:  host.SensorsTemperaturesWithContext,
		ioCounters:    gonet.IOCountersWithContext,
	}
}

// Cores returns the number of logical CPUs, at least 1.
func (s *Sampler) Cores(ctx context.Context) int {
	n, err := s.cpuCounts(ctx, true)
	if err != nil || n < 1 {
		s.logger.WithError(err).Warn("cannot count logical CPUs")
		return 1
	}
	return n
}

// Sensors returns the temperature sensor labels. The list is enumerated on
// the first call and never changes afterwards.
func (s *Sampler) Sensors(ctx context.Context) []string {
	if s.enumerated {
		return s.sensors
	}
	s.enumerated = true

	stats, err := s.temperatures(ctx)
	if err != nil && len(stats) == 0 {
		s.logger.WithError(err).Warn("no temperature sensors available")
		return nil
	}
	for _, st := range stats {
		s.sensors = append(s.sensors, st.SensorKey)
	}
	s.logger.WithField("sensors", len(s.sensors)).Debug("enumerated temperature sensors")
	return s.sensors
}

// Sample gathers all metrics. A failing source is reported in
// Snapshot.Warnings and leaves its fields at zero; only a cancelled context
// returns an error.
func (s *Sampler) Sample(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Time: s.now()}
	warn := func(err error) {
		snap.Warnings = append(snap.Warnings, err.Error())
	}

	if err := s.readCPU(ctx, snap); err != nil {
		warn(err)
	}
	if err := s.readMemory(ctx, snap); err != nil {
		warn(err)
	}
	if err := s.readTemperatures(ctx, snap); err != nil {
		warn(err)
	}
	if err := s.readNetwork(ctx, snap); err != nil {
		warn(err)
	}

	if len(snap.Warnings) > 0 {
		s.logger.WithField("warnings", snap.Warnings).Debug("partial snapshot")
	}
	return snap, nil
}

func (s *Sampler) readCPU(ctx context.Context, snap *Snapshot) error {
	var errs []error

	total, err := s.cpuPercent(ctx, 0, false)
	switch {
	case err != nil:
		errs = append(errs, errors.Wrap(err, "cpu total"))
	case len(total) > 0:
		snap.CPUTotal = percentToFraction(total[0])
	}

	cores, err := s.cpuPercent(ctx, 0, true)
	if err != nil {
		errs = append(errs, errors.Wrap(err, "cpu per core"))
	} else {
		snap.CPUs = make([]float64, len(cores))
		for i, p := range cores {
			snap.CPUs[i] = percentToFraction(p)
		}
	}
	return errors.Combine(errs...)
}

func (s *Sampler) readMemory(ctx context.Context, snap *Snapshot) error {
	var errs []error

	vm, err := s.virtualMemory(ctx)
	if err != nil {
		errs = append(errs, errors.Wrap(err, "virtual memory"))
	} else {
		snap.RAMUsed = vm.Used
		snap.RAMTotal = vm.Total
	}

	sw, err := s.swapMemory(ctx)
	if err != nil {
		errs = append(errs, errors.Wrap(err, "swap memory"))
	} else {
		snap.SwapUsed = sw.Used
		snap.SwapTotal = sw.Total
	}
	return errors.Combine(errs...)
}

func (s *Sampler) readTemperatures(ctx context.Context, snap *Snapshot) error {
	sensors := s.Sensors(ctx)
	if len(sensors) == 0 {
		return nil
	}
	snap.Temperatures = make([]Temperature, len(sensors))
	for i, label := range sensors {
		snap.Temperatures[i].Label = label
	}

	stats, err := s.temperatures(ctx)
	if err != nil && len(stats) == 0 {
		return errors.Wrap(err, "temperatures")
	}

	// Sensor keys may repeat, so the n-th reading of a key goes to the n-th
	// enumerated sensor with that key.
	readings := make(map[string][]float64, len(stats))
	for _, st := range stats {
		readings[st.SensorKey] = append(readings[st.SensorKey], st.Temperature)
	}
	for i, label := range sensors {
		values := readings[label]
		if len(values) == 0 {
			continue
		}
		snap.Temperatures[i].Celsius = values[0]
		readings[label] = values[1:]
	}
	return nil
}

func (s *Sampler) readNetwork(ctx context.Context, snap *Snapshot) error {
	counters, err := s.ioCounters(ctx, false)
	if err != nil {
		return errors.Wrap(err, "network counters")
	}
	if len(counters) == 0 {
		return errors.New("network counters: no interfaces")
	}

	sent, recv := counters[0].BytesSent, counters[0].BytesRecv
	if s.primed && sent >= s.prevSent && recv >= s.prevRecv {
		snap.NetOut = sent - s.prevSent
		snap.NetIn = recv - s.prevRecv
	}
	s.prevSent, s.prevRecv = sent, recv
	s.primed = true
	return nil
}

func percentToFraction(p float64) float64 {
	f := p / 100
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
