//go:build !windows

package mirror

// ListMonitors is a stub for non-Windows platforms.
// Display enumeration currently only supports DXGI on Windows.
func ListMonitors() ([]MonitorInfo, error) {
	return []MonitorInfo{{
		Index:     0,
		Name:      "Default",
		IsPrimary: true,
	}}, nil
}
