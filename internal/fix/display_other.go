//go:build !windows

package fix

// DesktopResolution reports no display on platforms without a desktop to
// query; callers fall back to the configured resolution.
func DesktopResolution() (int, int, bool) {
	return 0, 0, false
}
