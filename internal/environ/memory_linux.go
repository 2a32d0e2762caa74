//go:build linux

package environ

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// availableMemory approximates reclaimable memory as free plus buffer RAM.
func availableMemory() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("sysinfo: %w", err)
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * unit, nil
}
