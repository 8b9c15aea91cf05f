// Package sta drives wpa_supplicant's Unix-datagram control socket: network
// scanning, the known-network list, network selection, and connection
// status/events. Grounded on original_source/src/sta/*.rs for the wire
// semantics and on the teacher's wlan/wlan/states.go for the Go actor idiom
// that replaces the Rust tokio task.
package sta

import (
	"sort"
	"strconv"
	"strings"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
)

// ScanResult is one row of a SCAN_RESULTS reply.
type ScanResult struct {
	MAC       string
	Frequency string
	Signal    int
	Flags     string
	Name      string
}

// parseScanResults parses a SCAN_RESULTS reply, skipping its header line,
// and sorts the result by ascending signal strength, matching the
// original's post-scan sort before fanning results out to waiting callers.
func parseScanResults(response string) []ScanResult {
	var results []ScanResult
	lines := strings.Split(response, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		signal, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		results = append(results, ScanResult{
			MAC:       fields[0],
			Frequency: fields[1],
			Signal:    signal,
			Flags:     fields[3],
			Name:      strings.Join(fields[4:], " "),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Signal < results[j].Signal })
	return results
}

// NetworkResult is one row of a LIST_NETWORKS reply, enriched with the
// network's SSID fetched via a follow-up GET_NETWORK query.
type NetworkResult struct {
	NetworkID int
	SSID      string
	Flags     string
}

// Status is a wpa_supplicant STATUS reply parsed as a flat key=value map,
// per spec.md's STA Status representation.
type Status map[string]string

func parseStatus(response string) (Status, error) {
	status := make(Status)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		status[key] = value
	}
	if len(status) == 0 {
		return nil, wifictrl.ParsingStatusError{Response: response}
	}
	return status, nil
}

// SelectResult classifies the outcome of a SelectNetwork request.
type SelectResult int

const (
	SelectSuccess SelectResult = iota
	SelectWrongPsk
	SelectNotFound
	SelectPendingSelect
	SelectInvalidNetworkID
	SelectAlreadyConnected
	SelectTimeout
)

func (r SelectResult) String() string {
	switch r {
	case SelectSuccess:
		return "success"
	case SelectWrongPsk:
		return "wrong_psk"
	case SelectNotFound:
		return "network_not_found"
	case SelectPendingSelect:
		return "select_already_pending"
	case SelectInvalidNetworkID:
		return "invalid_network_id"
	case SelectAlreadyConnected:
		return "already_connected"
	case SelectTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}
