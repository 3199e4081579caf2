//go:build !windows
// +build !windows

package regclean

import "errors"

var errNoRegistry = errors.New("the registry is only available on Windows")

type noRegistry struct{}

// NewRegistryStore returns a Store that fails every call on this platform.
func NewRegistryStore() Store { return noRegistry{} }

func (noRegistry) SubKeys(string) ([]Key, error) { return nil, errNoRegistry }

func (noRegistry) DeleteTree(string) error { return errNoRegistry }
