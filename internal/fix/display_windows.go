//go:build windows

package fix

import (
	"unsafe"

	"github.com/lxn/win"
)

// DesktopResolution returns the width and height of the primary display's
// current mode, or false if the query fails.
func DesktopResolution() (int, int, bool) {
	var mode win.DEVMODE
	mode.DmSize = uint16(unsafe.Sizeof(mode))
	if !win.EnumDisplaySettings(nil, win.ENUM_CURRENT_SETTINGS, &mode) {
		return 0, 0, false
	}
	return int(mode.DmPelsWidth), int(mode.DmPelsHeight), true
}
