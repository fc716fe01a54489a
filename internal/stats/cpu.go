package stats

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
)

// SampleCPUPercent returns the system-wide CPU utilisation since the
// previous call. The first call after process start compares against boot.
func SampleCPUPercent() (float64, error) {
	v, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, fmt.Errorf("cpu percent: no samples")
	}
	return v[0], nil
}
