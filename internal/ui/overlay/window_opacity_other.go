//go:build !windows

package overlay

// Opacity comes from the translucent background rectangle on non-Windows
// platforms; no native layered-window tweak is needed.
func (overlay *Window) applyNativeOpacity(alpha uint8) {}
