//go:build windows

package singleinstance

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows"
)

// acquireAt uses a named mutex; path only contributes to the name so tests can
// take independent locks.
func acquireAt(path string) (*Lock, error) {
	name := `Local\` + strings.NewReplacer(`\`, "_", ":", "_", "/", "_").Replace(path)
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateMutex(nil, false, namePtr)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if h != 0 {
			_ = windows.CloseHandle(h)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("create mutex %s: %w", name, err)
	}
	return &Lock{release: func() error { return windows.CloseHandle(h) }}, nil
}
