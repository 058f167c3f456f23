//go:build windows

package caret

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetGUIThreadInfo         = user32.NewProc("GetGUIThreadInfo")
	procClientToScreen           = user32.NewProc("ClientToScreen")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type point struct {
	X, Y int32
}

// guiThreadInfo mirrors the Win32 GUITHREADINFO structure.
type guiThreadInfo struct {
	CbSize        uint32
	Flags         uint32
	HwndActive    windows.HWND
	HwndFocus     windows.HWND
	HwndCapture   windows.HWND
	HwndMenuOwner windows.HWND
	HwndMoveSize  windows.HWND
	HwndCaret     windows.HWND
	RcCaret       rect
}

// minCaretHeight keeps the companion visible next to caretless-looking
// zero-height rects some controls report.
const minCaretHeight = 16

// guiThreadProbe reads the native caret rectangle of the GUI thread that
// owns the foreground window. Cheapest and most precise method, but only
// legacy native controls maintain a system caret.
type guiThreadProbe struct{}

func (guiThreadProbe) Name() string { return "gui-thread-caret" }

func (guiThreadProbe) Locate() (Position, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return Position{}, false
	}

	// Never report a caret inside our own windows: the companion must not
	// follow itself, and injection must target a foreign process.
	var pid uint32
	tid, _, _ := procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if tid == 0 || pid == windows.GetCurrentProcessId() {
		return Position{}, false
	}

	info := guiThreadInfo{}
	info.CbSize = uint32(unsafe.Sizeof(info))
	ok, _, _ := procGetGUIThreadInfo.Call(tid, uintptr(unsafe.Pointer(&info)))
	if ok == 0 || info.HwndCaret == 0 {
		return Position{}, false
	}

	h := int(info.RcCaret.Bottom - info.RcCaret.Top)
	if h < minCaretHeight {
		h = minCaretHeight
	}

	// Caret rect is in the caret window's client coordinates.
	pt := point{X: info.RcCaret.Left, Y: info.RcCaret.Top}
	ok, _, _ = procClientToScreen.Call(uintptr(info.HwndCaret), uintptr(unsafe.Pointer(&pt)))
	if ok == 0 {
		return Position{}, false
	}

	return Position{X: int(pt.X), Y: int(pt.Y), CaretHeight: h}, true
}
