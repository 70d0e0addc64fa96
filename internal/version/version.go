// ABOUTME: Version constants for the player
// ABOUTME: Reported to the server in the device info handshake
package version

const (
	// Version is the player software version
	Version = "0.1.0"

	// Product is the product name reported to servers
	Product = "Sendspin Player"

	// Manufacturer identifies the project
	Manufacturer = "Sendspin"
)

// String returns the full product identification string
func String() string {
	return Product + " " + Version
}
