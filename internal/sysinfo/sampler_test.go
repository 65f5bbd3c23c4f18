package sysinfo

import (
	"context"
	"io"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gonet "github.com/shirou/gopsutil/v3/net"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeHost struct {
	total    float64
	cores    []float64
	cpuErr   error
	vm       mem.VirtualMemoryStat
	vmErr    error
	swap     mem.SwapMemoryStat
	temps    []host.TemperatureStat
	tempErr  error
	counters []gonet.IOCountersStat
	netErr   error
}

func newTestSampler(f *fakeHost) *Sampler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := NewSampler(logger)
	s.now = func() time.Time { return fixedTime }
	s.cpuCounts = func(context.Context, bool) (int, error) {
		if f.cpuErr != nil {
			return 0, f.cpuErr
		}
		return len(f.cores), nil
	}
	s.cpuPercent = func(_ context.Context, _ time.Duration, percpu bool) ([]float64, error) {
		if f.cpuErr != nil {
			return nil, f.cpuErr
		}
		if percpu {
			return f.cores, nil
		}
		return []float64{f.total}, nil
	}
	s.virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		if f.vmErr != nil {
			return nil, f.vmErr
		}
		vm := f.vm
		return &vm, nil
	}
	s.swapMemory = func(context.Context) (*mem.SwapMemoryStat, error) {
		sw := f.swap
		return &sw, nil
	}
	s.temperatures = func(context.Context) ([]host.TemperatureStat, error) {
		return f.temps, f.tempErr
	}
	s.ioCounters = func(context.Context, bool) ([]gonet.IOCountersStat, error) {
		return f.counters, f.netErr
	}
	return s
}

func TestSampler_Sample(t *testing.T) {
	f := &fakeHost{
		total: 50,
		cores: []float64{25, 100, 120, -3},
		vm:    mem.VirtualMemoryStat{Total: 8000, Used: 2000},
		swap:  mem.SwapMemoryStat{Total: 4000, Used: 1000},
		temps: []host.TemperatureStat{
			{SensorKey: "coretemp_core_0", Temperature: 45.5},
			{SensorKey: "acpitz", Temperature: 30},
		},
		counters: []gonet.IOCountersStat{{Name: "all", BytesSent: 1000, BytesRecv: 5000}},
	}
	s := newTestSampler(f)

	snap, err := s.Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, fixedTime, snap.Time)
	assert.Equal(t, 0.5, snap.CPUTotal)
	assert.Equal(t, []float64{0.25, 1, 1, 0}, snap.CPUs)
	assert.Equal(t, uint64(2000), snap.RAMUsed)
	assert.Equal(t, uint64(8000), snap.RAMTotal)
	assert.Equal(t, uint64(1000), snap.SwapUsed)
	assert.Equal(t, []Temperature{
		{Label: "coretemp_core_0", Celsius: 45.5},
		{Label: "acpitz", Celsius: 30},
	}, snap.Temperatures)
	assert.Zero(t, snap.NetIn, "first sample has no previous counters")
	assert.Zero(t, snap.NetOut)
	assert.Empty(t, snap.Warnings)

	f.counters = []gonet.IOCountersStat{{Name: "all", BytesSent: 1500, BytesRecv: 9000}}
	snap, err = s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4000), snap.NetIn)
	assert.Equal(t, uint64(500), snap.NetOut)
}

func TestSampler_NetworkCounterReset(t *testing.T) {
	f := &fakeHost{counters: []gonet.IOCountersStat{{BytesSent: 1000, BytesRecv: 1000}}}
	s := newTestSampler(f)

	_, err := s.Sample(context.Background())
	require.NoError(t, err)

	f.counters = []gonet.IOCountersStat{{BytesSent: 10, BytesRecv: 10}}
	snap, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.NetIn)
	assert.Zero(t, snap.NetOut)

	f.counters = []gonet.IOCountersStat{{BytesSent: 30, BytesRecv: 110}}
	snap, err = s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), snap.NetIn)
	assert.Equal(t, uint64(20), snap.NetOut)
}

func TestSampler_PartialFailures(t *testing.T) {
	f := &fakeHost{
		cpuErr: errors.New("no /proc/stat"),
		vmErr:  errors.New("no meminfo"),
		swap:   mem.SwapMemoryStat{Total: 10, Used: 5},
		netErr: errors.New("no net"),
	}
	s := newTestSampler(f)

	snap, err := s.Sample(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snap.CPUTotal)
	assert.Nil(t, snap.CPUs)
	assert.Zero(t, snap.RAMTotal)
	assert.Equal(t, uint64(5), snap.SwapUsed)
	require.Len(t, snap.Warnings, 3)
	assert.Contains(t, snap.Warnings[0], "cpu total")
	assert.Contains(t, snap.Warnings[0], "cpu per core")
	assert.Contains(t, snap.Warnings[1], "virtual memory")
	assert.Contains(t, snap.Warnings[2], "network counters")
}

func TestSampler_Cores(t *testing.T) {
	s := newTestSampler(&fakeHost{cores: []float64{1, 2, 3, 4}})
	assert.Equal(t, 4, s.Cores(context.Background()))

	s = newTestSampler(&fakeHost{cpuErr: errors.New("boom")})
	assert.Equal(t, 1, s.Cores(context.Background()))
}

func TestSampler_SensorsEnumeratedOnce(t *testing.T) {
	f := &fakeHost{
		temps: []host.TemperatureStat{
			{SensorKey: "nvme", Temperature: 40},
			{SensorKey: "nvme", Temperature: 41},
			{SensorKey: "gpu", Temperature: 60},
		},
		counters: []gonet.IOCountersStat{{}},
	}
	s := newTestSampler(f)

	assert.Equal(t, []string{"nvme", "nvme", "gpu"}, s.Sensors(context.Background()))

	// A sensor disappears and a new one shows up: the list is kept.
	f.temps = []host.TemperatureStat{
		{SensorKey: "nvme", Temperature: 42},
		{SensorKey: "wifi", Temperature: 50},
	}
	assert.Equal(t, []string{"nvme", "nvme", "gpu"}, s.Sensors(context.Background()))

	snap, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Temperature{
		{Label: "nvme", Celsius: 42},
		{Label: "nvme", Celsius: 0},
		{Label: "gpu", Celsius: 0},
	}, snap.Temperatures)
}

func TestSampler_SensorWarningsKeepReadings(t *testing.T) {
	f := &fakeHost{
		temps:    []host.TemperatureStat{{SensorKey: "acpitz", Temperature: 33}},
		tempErr:  errors.New("some sensors unreadable"),
		counters: []gonet.IOCountersStat{{}},
	}
	s := newTestSampler(f)

	snap, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Temperature{{Label: "acpitz", Celsius: 33}}, snap.Temperatures)
	assert.Empty(t, snap.Warnings)
}

func TestSampler_NoSensors(t *testing.T) {
	f := &fakeHost{tempErr: errors.New("not implemented"), counters: []gonet.IOCountersStat{{}}}
	s := newTestSampler(f)

	assert.Empty(t, s.Sensors(context.Background()))
	snap, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Temperatures)
	assert.Empty(t, snap.Warnings)
}

func TestSampler_CancelledContext(t *testing.T) {
	s := newTestSampler(&fakeHost{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := s.Sample(ctx)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_Fractions(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		ram  float64
		swap float64
	}{
		{
			name: "swap smaller than ram shares the ram axis",
			snap: Snapshot{RAMUsed: 4, RAMTotal: 16, SwapUsed: 2, SwapTotal: 8},
			ram:  0.25,
			swap: 0.125,
		},
		{
			name: "swap larger than ram",
			snap: Snapshot{RAMUsed: 8, RAMTotal: 8, SwapUsed: 8, SwapTotal: 32},
			ram:  1,
			swap: 0.25,
		},
		{
			name: "no swap",
			snap: Snapshot{RAMUsed: 1, RAMTotal: 2},
			ram:  0.5,
			swap: 0,
		},
		{
			name: "nothing known",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.ram, test.snap.RAMFraction())
			assert.Equal(t, test.swap, test.snap.SwapFraction())
		})
	}
}
