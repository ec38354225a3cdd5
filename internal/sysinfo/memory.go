// Package sysinfo reports process and system memory figures for load
// logging and the health endpoint.
package sysinfo

import (
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const mib = 1024 * 1024

// MemoryReport is a point-in-time snapshot of memory usage.
type MemoryReport struct {
	ProcessRSSMB      float64 `json:"process_rss_mb"`
	SystemUsedPercent float64 `json:"system_used_percent"`
	SystemAvailableMB float64 `json:"system_available_mb"`
}

// ProcessMemoryMB returns the resident set size of this process in MB.
func ProcessMemoryMB() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / mib, nil
}

// Snapshot collects process RSS and system memory stats.
// Fields that cannot be collected are left zero; Snapshot never fails
// outright so callers can always report something.
func Snapshot() MemoryReport {
	var r MemoryReport
	if rss, err := ProcessMemoryMB(); err == nil {
		r.ProcessRSSMB = rss
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.SystemUsedPercent = vm.UsedPercent
		r.SystemAvailableMB = float64(vm.Available) / mib
	}
	return r
}
