//go:build windows
// +build windows

package elevate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/windowsadmins/winadmin/pkg/cmdline"
)

var (
	modshell32          = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteExW = modshell32.NewProc("ShellExecuteExW")
)

const (
	seeMaskNoCloseProcess = 0x00000040
	seeMaskNoAsync        = 0x00000100
	swShowNormal          = 1
)

// shellExecuteInfo mirrors SHELLEXECUTEINFOW.
type shellExecuteInfo struct {
	cbSize       uint32
	fMask        uint32
	hwnd         windows.HWND
	lpVerb       *uint16
	lpFile       *uint16
	lpParameters *uint16
	lpDirectory  *uint16
	nShow        int32
	hInstApp     windows.Handle
	lpIDList     uintptr
	lpClass      *uint16
	hkeyClass    windows.Handle
	dwHotKey     uint32
	hIcon        windows.Handle
	hProcess     windows.Handle
}

// ShellExecuteLauncher starts the child through ShellExecuteExW with the
// "runas" verb, which raises the UAC prompt. The elevated child always gets
// a console of its own; Windows does not let a non-elevated parent share
// handles with it, so LaunchSpec.Stdin has no effect here.
type ShellExecuteLauncher struct{}

func newShellExecuteLauncher() Launcher { return &ShellExecuteLauncher{} }

// LaunchElevated implements Launcher.
func (l *ShellExecuteLauncher) LaunchElevated(spec LaunchSpec) (int, error) {
	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrChildProcessSpawn, err)
	}
	file, err := windows.UTF16PtrFromString(spec.Path)
	if err != nil {
		return -1, fmt.Errorf("%w: invalid executable path: %v", ErrChildProcessSpawn, err)
	}
	params, err := windows.UTF16PtrFromString(cmdline.Join(spec.Args))
	if err != nil {
		return -1, fmt.Errorf("%w: invalid arguments: %v", ErrChildProcessSpawn, err)
	}
	var dir *uint16
	if spec.Dir != "" {
		if dir, err = windows.UTF16PtrFromString(spec.Dir); err != nil {
			return -1, fmt.Errorf("%w: invalid working directory: %v", ErrChildProcessSpawn, err)
		}
	}

	info := shellExecuteInfo{
		fMask:        seeMaskNoCloseProcess | seeMaskNoAsync,
		lpVerb:       verb,
		lpFile:       file,
		lpParameters: params,
		lpDirectory:  dir,
		nShow:        swShowNormal,
	}
	info.cbSize = uint32(unsafe.Sizeof(info))

	r, _, callErr := procShellExecuteExW.Call(uintptr(unsafe.Pointer(&info)))
	if r == 0 {
		if errors.Is(callErr, windows.ERROR_CANCELLED) {
			return -1, fmt.Errorf("%w: %v", ErrElevationDeclined, callErr)
		}
		return -1, fmt.Errorf("%w: ShellExecuteEx: %v", ErrChildProcessSpawn, callErr)
	}
	if info.hProcess == 0 {
		return -1, fmt.Errorf("%w: ShellExecuteEx returned no process handle", ErrChildProcessSpawn)
	}
	defer windows.CloseHandle(info.hProcess)

	if _, err := windows.WaitForSingleObject(info.hProcess, windows.INFINITE); err != nil {
		return -1, fmt.Errorf("%w: waiting for elevated process: %v", ErrChildProcessSpawn, err)
	}
	var code uint32
	if err := windows.GetExitCodeProcess(info.hProcess, &code); err != nil {
		return -1, fmt.Errorf("%w: reading exit code: %v", ErrChildProcessSpawn, err)
	}
	return int(code), nil
}

// PowerShellLauncher runs Start-Process -Verb RunAs -Wait -PassThru in a
// powershell.exe helper. The helper prints the child's exit code on stdout;
// a helper that fails without printing one means the launch was refused.
type PowerShellLauncher struct {
	// PowerShell is the path of powershell.exe.
	PowerShell string
}

func newPowerShellLauncher() Launcher {
	return &PowerShellLauncher{
		PowerShell: filepath.Join(os.Getenv("WINDIR"), "System32", "WindowsPowerShell", "v1.0", "powershell.exe"),
	}
}

// LaunchElevated implements Launcher.
func (l *PowerShellLauncher) LaunchElevated(spec LaunchSpec) (int, error) {
	script := powerShellScript(spec.Path, cmdline.Join(spec.Args), spec.Dir)
	cmd := exec.Command(l.PowerShell, "-NoProfile", "-NonInteractive", "-EncodedCommand", encodePowerShell(script))

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if spec.Stdin == StdinInherit {
		cmd.Stdin = os.Stdin
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return -1, fmt.Errorf("%w: Start-Process exited with code %d", ErrElevationDeclined, exitErr.ExitCode())
		}
		return -1, fmt.Errorf("%w: %v", ErrChildProcessSpawn, err)
	}

	code, err := parseExitCode(stdout.String())
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrChildProcessSpawn, err)
	}
	return code, nil
}
