// pkg/mirror/drives.go - facts about the destination drive shown in the sync plan.

package mirror

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// DriveInfo describes a mounted volume.
type DriveInfo struct {
	Root       string
	Label      string
	DriveType  string
	FileSystem string
	Total      uint64
	Free       uint64
}

// usage is replaced in tests.
var usage = disk.Usage

// Describe gathers size and label information for the volume at root.
func Describe(root string) (DriveInfo, error) {
	info := DriveInfo{Root: root}

	u, err := usage(root)
	if err != nil {
		return info, fmt.Errorf("drive %s is not available: %w", root, err)
	}
	info.Total = u.Total
	info.Free = u.Free
	info.FileSystem = u.Fstype

	// Labels are informational; a failed lookup leaves them empty.
	info.Label, info.DriveType = volumeDetails(root)
	return info, nil
}

// String formats the drive for the plan, e.g. `I:\ "Backup" (NTFS, 812.4 GiB free of 1.8 TiB)`.
func (d DriveInfo) String() string {
	s := d.Root
	if d.Label != "" {
		s += fmt.Sprintf(" %q", d.Label)
	}
	detail := fmt.Sprintf("%s free of %s", humanBytes(d.Free), humanBytes(d.Total))
	if d.FileSystem != "" {
		detail = d.FileSystem + ", " + detail
	}
	if d.DriveType != "" {
		detail = d.DriveType + ", " + detail
	}
	return s + " (" + detail + ")"
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
