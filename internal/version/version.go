// ABOUTME: Version and product identification
// ABOUTME: Shown in the startup banner of the CLIs
package version

import "fmt"

const (
	Version      = "0.3.0"
	Product      = "Sendspin DAC"
	Manufacturer = "Sendspin"
)

// Banner returns the one-line product string
func Banner() string {
	return fmt.Sprintf("%s %s (%s)", Product, Version, Manufacturer)
}
