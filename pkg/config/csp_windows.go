//go:build windows
// +build windows

package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// loadCSPOverrides applies policy values written by an MDM CSP (OMA-URI) or GPO.
// A missing key means no policy is set.
func loadCSPOverrides(registryPath string, config *Configuration) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, registryPath, registry.READ)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open CSP registry key %s: %w", registryPath, err)
	}
	defer key.Close()

	loadStringFromRegistry(key, "ElevationMethod", &config.Elevation.Method)
	loadStringFromRegistry(key, "ElevationProbe", &config.Elevation.Probe)
	loadIntFromRegistry(key, "ElevationPauseSeconds", &config.Elevation.PauseSeconds)
	loadIntFromRegistry(key, "ExitPauseSeconds", &config.ExitPauseSeconds)

	loadStringFromRegistry(key, "LogBaseDir", &config.Logging.BaseDir)
	loadStringFromRegistry(key, "LogLevel", &config.Logging.Level)
	loadIntFromRegistry(key, "LogRetentionRuns", &config.Logging.RetentionRuns)
	loadBoolFromRegistry(key, "LoggingDisabled", &config.Logging.Disabled)

	loadStringFromRegistry(key, "Winget", &config.Updates.Winget)
	loadStringFromRegistry(key, "WingetMinimumVersion", &config.Updates.MinimumVersion)

	loadStringFromRegistry(key, "RegistryMatch", &config.Registry.Match)
	loadStringArrayFromRegistry(key, "RegistryRoots", &config.Registry.Roots)

	loadStringFromRegistry(key, "MirrorOriginDrive", &config.Mirror.OriginDrive)
	loadStringArrayFromRegistry(key, "MirrorAllowedDrives", &config.Mirror.AllowedDrives)
	return nil
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("CSP: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts various formats: "true"/"false", "1"/"0", DWORD 1/0
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %t", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
		log.Printf("CSP: Loaded %s = %t", valueName, val != 0)
	}
}

// loadIntFromRegistry loads an integer value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %d", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
		log.Printf("CSP: Loaded %s = %d", valueName, int(val))
	}
}

// loadStringArrayFromRegistry loads a string array from registry.
// Arrays can be stored as comma-separated values or multi-string (REG_MULTI_SZ).
func loadStringArrayFromRegistry(key registry.Key, valueName string, target *[]string) {
	if vals, _, err := key.GetStringsValue(valueName); err == nil && len(vals) > 0 {
		if filtered := nonEmpty(vals); len(filtered) > 0 {
			*target = filtered
			log.Printf("CSP: Loaded %s = %v", valueName, filtered)
			return
		}
	}

	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		if filtered := nonEmpty(strings.Split(val, ",")); len(filtered) > 0 {
			*target = filtered
			log.Printf("CSP: Loaded %s = %v", valueName, filtered)
		}
	}
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
