// Package format renders values for display and for dialing.
package format

import (
	"fmt"
	"strings"
)

// Addr joins host and port into a dialable address, bracketing IPv6
// hosts as required by net.Dial and friends.
func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") {
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}
