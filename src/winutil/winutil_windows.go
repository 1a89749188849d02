//go:build windows

package winutil

import (
	"fmt"
	"image"
	"log"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const dwmwaTransitionsForceDisabled = 3

var (
	dwmapi                    = windows.NewLazySystemDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")

	shcore                     = windows.NewLazySystemDLL("shcore.dll")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")

	user32                 = windows.NewLazySystemDLL("user32.dll")
	procSetProcessDPIAware = user32.NewProc("SetProcessDPIAware")
)

// Supported reports whether MakePopup and Move can style and reposition windows on this platform.
func Supported() bool { return true }

// EnableDPIAwareness asks for per-monitor DPI awareness so captured pixels and
// window coordinates agree. Must run before any window is created.
func EnableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		_, _, _ = procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	if err := procSetProcessDPIAware.Find(); err == nil {
		_, _, _ = procSetProcessDPIAware.Call()
	}
}

// findWindow looks the window up by its unique title. Freshly created windows
// can take a moment to become visible to FindWindow.
func findWindow(title string) (win.HWND, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	for i := 0; i < 10; i++ {
		if hwnd := win.FindWindow(nil, titlePtr); hwnd != 0 {
			return hwnd, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return 0, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
}

// MakePopup strips the caption and sizing frame, disables DWM open/close
// animations and pins the window above all others at pos with the given size.
func MakePopup(title string, pos image.Point, width, height int) error {
	hwnd, err := findWindow(title)
	if err != nil {
		return err
	}
	style := uint32(win.GetWindowLong(hwnd, win.GWL_STYLE))
	style &^= win.WS_CAPTION | win.WS_THICKFRAME | win.WS_SYSMENU | win.WS_MINIMIZEBOX | win.WS_MAXIMIZEBOX
	style |= win.WS_POPUP
	win.SetWindowLong(hwnd, win.GWL_STYLE, int32(style))

	disabled := int32(1)
	if err := procDwmSetWindowAttribute.Find(); err == nil {
		_, _, _ = procDwmSetWindowAttribute.Call(
			uintptr(hwnd),
			uintptr(dwmwaTransitionsForceDisabled),
			uintptr(unsafe.Pointer(&disabled)),
			unsafe.Sizeof(disabled),
		)
	}

	if !win.SetWindowPos(hwnd, win.HWND_TOPMOST, int32(pos.X), int32(pos.Y), int32(width), int32(height),
		win.SWP_FRAMECHANGED|win.SWP_SHOWWINDOW) {
		return fmt.Errorf("SetWindowPos %q failed", title)
	}
	log.Printf("Winutil: %q popup %dx%d at %v", title, width, height, pos)
	return nil
}

// Move repositions the window without changing size, z-order or focus.
func Move(title string, pos image.Point) error {
	hwnd, err := findWindow(title)
	if err != nil {
		return err
	}
	if !win.SetWindowPos(hwnd, 0, int32(pos.X), int32(pos.Y), 0, 0,
		win.SWP_NOSIZE|win.SWP_NOZORDER|win.SWP_NOACTIVATE) {
		return fmt.Errorf("SetWindowPos %q failed", title)
	}
	return nil
}
