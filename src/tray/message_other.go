//go:build !windows

package tray

import (
	"fmt"
	"os"
)

// ShowMessage prints the message; there is no native dialog outside Windows.
func ShowMessage(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
