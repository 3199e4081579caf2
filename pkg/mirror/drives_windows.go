//go:build windows
// +build windows

package mirror

import (
	"fmt"
	"strings"

	"github.com/yusufpapurcu/wmi"
)

// Win32_LogicalDisk is the WMI class queried for volume details.
type Win32_LogicalDisk struct {
	DeviceID   string `wmi:"DeviceID"`
	VolumeName string `wmi:"VolumeName"`
	DriveType  uint32 `wmi:"DriveType"`
}

var driveTypes = map[uint32]string{
	2: "removable",
	3: "local",
	4: "network",
	5: "optical",
	6: "ram disk",
}

func volumeDetails(root string) (label, driveType string) {
	device := strings.TrimRight(root, `\`)
	var disks []Win32_LogicalDisk
	query := fmt.Sprintf("SELECT DeviceID, VolumeName, DriveType FROM Win32_LogicalDisk WHERE DeviceID = '%s'", device)
	if err := wmi.Query(query, &disks); err != nil || len(disks) == 0 {
		return "", ""
	}
	return disks[0].VolumeName, driveTypes[disks[0].DriveType]
}
