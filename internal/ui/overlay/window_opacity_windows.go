//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2/driver"
)

// Win32 layered-window plumbing: GLFW windows are opaque by default, so the
// overlay sets WS_EX_LAYERED and a whole-window alpha on its HWND.
const (
	gwlExStyle  int32 = -20
	wsExLayered       = 0x00080000
	lwaAlpha          = 0x2
)

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	getWindowLongPtr        = user32.NewProc("GetWindowLongPtrW")
	setWindowLongPtr        = user32.NewProc("SetWindowLongPtrW")
	setLayeredWindowAttribs = user32.NewProc("SetLayeredWindowAttributes")
)

func (overlay *Window) applyNativeOpacity(alpha uint8) {
	nativeWindow, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		hwnd := windowsHandle(context)
		if hwnd == 0 {
			return
		}

		index := uintptr(uint32(gwlExStyle))
		style, _, _ := getWindowLongPtr.Call(hwnd, index)
		if style&wsExLayered == 0 {
			setWindowLongPtr.Call(hwnd, index, style|wsExLayered)
		}
		setLayeredWindowAttribs.Call(hwnd, 0, uintptr(alpha), uintptr(lwaAlpha))
	})
}

func windowsHandle(context any) uintptr {
	switch value := context.(type) {
	case driver.WindowsWindowContext:
		return value.HWND
	case *driver.WindowsWindowContext:
		return value.HWND
	}
	return 0
}
