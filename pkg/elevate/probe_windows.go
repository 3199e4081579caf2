//go:build windows
// +build windows

package elevate

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func tokenProbe() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

func membershipProbe() bool {
	var adminSid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&adminSid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(adminSid)

	// A zero token makes CheckTokenMembership use the effective token of the calling thread.
	token := windows.Token(0)
	isMember, err := token.IsMember(adminSid)
	return err == nil && isMember
}

func netSessionProbe() bool {
	cmd := exec.Command("net", "session")
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return cmd.Run() == nil
}
