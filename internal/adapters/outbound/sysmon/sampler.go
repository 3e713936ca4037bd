// Package sysmon snapshots host resource usage for stage records.
package sysmon

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/pipegate/pipegate/internal/domain"
)

// Sampler implements domain.MetricsSampler with gopsutil.
type Sampler struct{}

// New creates a Sampler.
func New() *Sampler { return &Sampler{} }

// Sample reads current CPU, memory, disk, and load figures. Metrics are
// best-effort: a probe that fails on this platform leaves its field zero
// rather than failing the snapshot.
func (s *Sampler) Sample() (domain.SystemMetrics, error) {
	var m domain.SystemMetrics

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		m.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		m.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		m.DiskPercent = du.UsedPercent
	}
	if avg, err := load.Avg(); err == nil {
		m.LoadAverage = avg.Load1
	}

	return m, nil
}
