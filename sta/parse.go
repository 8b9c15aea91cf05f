package sta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/novalabsxyz/wifi-ctrl/internal/unixsock"
)

// trimReply strips surrounding whitespace and, where present, the quotes
// wpa_supplicant wraps string values in (e.g. GET_NETWORK <id> ssid),
// matching spec.md's "quotes trimmed only" SSID handling.
func trimReply(b []byte) string {
	return strings.Trim(strings.TrimSpace(string(b)), `"`)
}

// networksFromListing parses a LIST_NETWORKS reply and, for each row,
// issues a follow-up "GET_NETWORK <id> ssid" query over the same handle to
// resolve its SSID, mirroring original_source/src/sta/types.rs.
func networksFromListing(response string, handle *unixsock.Handle) ([]NetworkResult, error) {
	var results []NetworkResult
	lines := strings.Split(response, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		cmd := fmt.Sprintf("GET_NETWORK %d ssid", id)
		if _, err := handle.Send([]byte(cmd)); err != nil {
			return nil, err
		}
		n, err := handle.RecvWithTimeout(time.Second)
		if err != nil {
			return nil, err
		}
		ssid := trimReply(handle.Buf[:n])

		flags := ""
		if len(fields) > 1 {
			flags = fields[len(fields)-1]
		}
		results = append(results, NetworkResult{NetworkID: id, SSID: ssid, Flags: flags})
	}
	return results, nil
}
