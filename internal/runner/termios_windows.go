package runner

import "golang.org/x/sys/windows"

// Console raw mode on Windows keeps output processing enabled.
func restoreOutputProcessing(int) {}

func raiseInterrupt() {
	_ = windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, 0)
}
