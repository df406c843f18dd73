//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package runner

import "golang.org/x/sys/unix"

// restoreOutputProcessing turns OPOST back on after term.MakeRaw. Raw mode
// is only wanted for keypress input; without OPOST the progress bar and
// result lines lose their \n -> \r\n translation.
func restoreOutputProcessing(fd int) {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}
	if t.Oflag&unix.OPOST != 0 {
		return
	}
	t.Oflag |= unix.OPOST
	_ = unix.IoctlSetTermios(fd, ioctlSetTermios, t)
}

// raiseInterrupt delivers SIGINT to this process so the signal context
// sees a Ctrl+C swallowed by raw mode.
func raiseInterrupt() {
	_ = unix.Kill(unix.Getpid(), unix.SIGINT)
}
