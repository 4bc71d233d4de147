//go:build !windows

package mirror

// newPlatformChannel returns an error on non-Windows platforms. Desktop
// duplication is a DXGI facility.
func newPlatformChannel(cfg ChannelConfig) (DuplicationChannel, error) {
	return nil, ErrNotSupported
}
