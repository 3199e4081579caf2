//go:build windows
// +build windows

package regclean

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	modadvapi32         = windows.NewLazySystemDLL("advapi32.dll")
	procRegDeleteKeyExW = modadvapi32.NewProc("RegDeleteKeyExW")
)

// RegistryStore reads and deletes keys in the 64-bit registry view.
type RegistryStore struct{}

// NewRegistryStore returns the Store backed by the Windows registry.
func NewRegistryStore() Store { return RegistryStore{} }

var hives = map[string]registry.Key{
	"HKLM":                registry.LOCAL_MACHINE,
	"HKEY_LOCAL_MACHINE":  registry.LOCAL_MACHINE,
	"HKCU":                registry.CURRENT_USER,
	"HKEY_CURRENT_USER":   registry.CURRENT_USER,
	"HKU":                 registry.USERS,
	"HKEY_USERS":          registry.USERS,
	"HKCR":                registry.CLASSES_ROOT,
	"HKEY_CLASSES_ROOT":   registry.CLASSES_ROOT,
	"HKCC":                registry.CURRENT_CONFIG,
	"HKEY_CURRENT_CONFIG": registry.CURRENT_CONFIG,
}

func splitPath(path string) (registry.Key, string, error) {
	hive, rest, _ := strings.Cut(path, `\`)
	k, ok := hives[strings.ToUpper(hive)]
	if !ok {
		return 0, "", fmt.Errorf("unknown registry hive in %q", path)
	}
	return k, strings.Trim(rest, `\`), nil
}

// SubKeys implements Store.
func (RegistryStore) SubKeys(root string) ([]Key, error) {
	hive, path, err := splitPath(root)
	if err != nil {
		return nil, err
	}
	key, err := registry.OpenKey(hive, path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	keys := make([]Key, 0, len(names))
	for _, name := range names {
		k := Key{Name: name}
		if sub, err := registry.OpenKey(key, name, registry.QUERY_VALUE|registry.WOW64_64KEY); err == nil {
			k.DisplayName, _, _ = sub.GetStringValue("DisplayName")
			sub.Close()
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// DeleteTree implements Store. RegDeleteKeyEx only removes keys without
// subkeys, so children are deleted first.
func (RegistryStore) DeleteTree(path string) error {
	hive, sub, err := splitPath(path)
	if err != nil {
		return err
	}
	if err := deleteTree(hive, sub); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return err
	}
	return nil
}

func deleteTree(hive registry.Key, path string) error {
	key, err := registry.OpenKey(hive, path, registry.ENUMERATE_SUB_KEYS|registry.WOW64_64KEY)
	if err != nil {
		return err
	}
	children, err := key.ReadSubKeyNames(-1)
	key.Close()
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteTree(hive, path+`\`+child); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return err
		}
	}
	return deleteKey64(hive, path)
}

// deleteKey64 removes an empty key from the 64-bit view. registry.DeleteKey
// calls RegDeleteKey, which a 32-bit build would redirect to WOW6432Node.
func deleteKey64(hive registry.Key, path string) error {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	r, _, _ := procRegDeleteKeyExW.Call(uintptr(hive), uintptr(unsafe.Pointer(p)), uintptr(registry.WOW64_64KEY), 0)
	if r != 0 {
		return syscall.Errno(r)
	}
	return nil
}
