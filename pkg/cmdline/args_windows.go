//go:build windows
// +build windows

package cmdline

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ProcessArgs re-parses the raw Windows command line so that the returned
// vector matches exactly what the launching process passed, including paths
// with spaces. It falls back to os.Args if the command line is unavailable.
func ProcessArgs() []string {
	cmdLinePtr := windows.GetCommandLine()
	if cmdLinePtr == nil {
		return os.Args
	}
	var argc int32
	argvPtr, err := windows.CommandLineToArgv(cmdLinePtr, &argc)
	if err != nil || argvPtr == nil || argc < 1 {
		return os.Args
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(argvPtr))))

	argvSlice := unsafe.Slice((**uint16)(unsafe.Pointer(argvPtr)), argc)

	args := make([]string, 0, argc)
	for _, p := range argvSlice {
		if p != nil {
			args = append(args, windows.UTF16PtrToString(p))
		}
	}
	return args
}
