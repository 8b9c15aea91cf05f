package sta

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseScanResultsSortsBySignal(t *testing.T) {
	response := "bssid / frequency / signal level / flags / ssid\n" +
		"02:00:00:00:00:01\t2412\t-40\t[WPA2-PSK-CCMP][ESS]\tstrong-ap\n" +
		"02:00:00:00:00:02\t2437\t-70\t[WPA2-PSK-CCMP][ESS]\tweak-ap\n" +
		"02:00:00:00:00:03\t2462\t-55\t[ESS]\tmid-ap\n"

	got := parseScanResults(response)
	want := []ScanResult{
		{MAC: "02:00:00:00:00:02", Frequency: "2437", Signal: -70, Flags: "[WPA2-PSK-CCMP][ESS]", Name: "weak-ap"},
		{MAC: "02:00:00:00:00:03", Frequency: "2462", Signal: -55, Flags: "[ESS]", Name: "mid-ap"},
		{MAC: "02:00:00:00:00:01", Frequency: "2412", Signal: -40, Flags: "[WPA2-PSK-CCMP][ESS]", Name: "strong-ap"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseScanResults() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScanResultsSkipsMalformedRows(t *testing.T) {
	response := "bssid / frequency / signal level / flags / ssid\n" +
		"02:00:00:00:00:01\t2412\tnot-a-number\t[ESS]\tbad-row\n" +
		"02:00:00:00:00:02\t2437\t-60\t[ESS]\tgood-row\n"

	got := parseScanResults(response)
	want := []ScanResult{
		{MAC: "02:00:00:00:00:02", Frequency: "2437", Signal: -60, Flags: "[ESS]", Name: "good-row"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseScanResults() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatus(t *testing.T) {
	response := "bssid=02:00:00:00:00:01\nssid=home-network\nid=0\nwpa_state=COMPLETED\n"

	got, err := parseStatus(response)
	if err != nil {
		t.Fatalf("parseStatus: %v", err)
	}
	want := Status{
		"bssid":     "02:00:00:00:00:01",
		"ssid":      "home-network",
		"id":        "0",
		"wpa_state": "COMPLETED",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseStatus() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatusEmptyResponseIsError(t *testing.T) {
	if _, err := parseStatus(""); err == nil {
		t.Fatal("parseStatus(\"\") = nil error, want ParsingStatusError")
	}
}

func TestSelectResultString(t *testing.T) {
	cases := map[SelectResult]string{
		SelectSuccess:          "success",
		SelectWrongPsk:         "wrong_psk",
		SelectNotFound:         "network_not_found",
		SelectPendingSelect:    "select_already_pending",
		SelectInvalidNetworkID: "invalid_network_id",
		SelectAlreadyConnected: "already_connected",
		SelectTimeout:          "timeout",
	}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Errorf("SelectResult(%d).String() = %q, want %q", r, got, want)
		}
	}
}
