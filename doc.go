// Package wifictrl drives the Unix-datagram control sockets exposed by
// hostapd and wpa_supplicant. It has no types of its own beyond the error
// taxonomy shared by the ap and sta subpackages; callers use those directly.
package wifictrl
