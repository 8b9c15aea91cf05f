// Package ap drives hostapd's Unix-datagram control socket: status and
// configuration queries, enable/disable, arbitrary SET, and associated-
// station connect/disconnect events. Grounded on original_source/src/ap/*.rs
// for the wire semantics.
package ap

import (
	"strconv"
	"strings"

	wifictrl "github.com/novalabsxyz/wifi-ctrl"
)

// parseKV parses a hostapd key=value response into an ordered multimap,
// since fields like "bss"/"bssid"/"ssid"/"num_sta" repeat once per BSS on a
// multi-BSSID interface (original_source/src/ap/types.rs models these as
// Vec<String> for exactly this reason).
func parseKV(response string) map[string][]string {
	kv := make(map[string][]string)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		kv[key] = append(kv[key], value)
	}
	return kv
}

func first(kv map[string][]string, key string) string {
	if v := kv[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Status is hostapd's STATUS reply, parsed into the fixed field set the
// daemon always reports.
type Status struct {
	State                    string
	Phy                      string
	Freq                     string
	NumSTANonERP             string
	NumSTANoShortSlotTime    string
	NumSTANoShortPreamble    string
	OLBC                     string
	NumSTAHTNoGF             string
	NumSTANoHT               string
	NumSTAHT20MHz            string
	NumSTAHT40Intolerant     string
	OLBCHT                   string
	HTOpMode                 string
	CACTimeSeconds           string
	CACTimeLeftSeconds       string
	Channel                  string
	SecondaryChannel         string
	IEEE80211n               string
	IEEE80211ac              string
	IEEE80211ax              string
	BeaconInt                string
	DTIMPeriod               string
	HTCapsInfo               string
	HTMCSBitmask             string
	SupportedRates           string
	MaxTxPower               string
	BSS                      []string
	BSSID                    []string
	SSID                     []string
	NumSTA                   []string
}

func parseStatus(response string) (Status, error) {
	kv := parseKV(response)
	if len(kv) == 0 {
		return Status{}, wifictrl.ParsingStatusError{Response: response}
	}
	return Status{
		State:                 first(kv, "state"),
		Phy:                   first(kv, "phy"),
		Freq:                  first(kv, "freq"),
		NumSTANonERP:          first(kv, "num_sta_non_erp"),
		NumSTANoShortSlotTime: first(kv, "num_sta_no_short_slot_time"),
		NumSTANoShortPreamble: first(kv, "num_sta_no_short_preamble"),
		OLBC:                  first(kv, "olbc"),
		NumSTAHTNoGF:          first(kv, "num_sta_ht_no_gf"),
		NumSTANoHT:            first(kv, "num_sta_no_ht"),
		NumSTAHT20MHz:         first(kv, "num_sta_ht_20_mhz"),
		NumSTAHT40Intolerant:  first(kv, "num_sta_ht40_intolerant"),
		OLBCHT:                first(kv, "olbc_ht"),
		HTOpMode:              first(kv, "ht_op_mode"),
		CACTimeSeconds:        first(kv, "cac_time_seconds"),
		CACTimeLeftSeconds:    first(kv, "cac_time_left_seconds"),
		Channel:               first(kv, "channel"),
		SecondaryChannel:      first(kv, "secondary_channel"),
		IEEE80211n:            first(kv, "ieee80211n"),
		IEEE80211ac:           first(kv, "ieee80211ac"),
		IEEE80211ax:           first(kv, "ieee80211ax"),
		BeaconInt:             first(kv, "beacon_int"),
		DTIMPeriod:            first(kv, "dtim_period"),
		HTCapsInfo:            first(kv, "ht_caps_info"),
		HTMCSBitmask:          first(kv, "ht_mcs_bitmask"),
		SupportedRates:        first(kv, "supported_rates"),
		MaxTxPower:            first(kv, "max_txpower"),
		BSS:                   kv["bss"],
		BSSID:                 kv["bssid"],
		SSID:                  kv["ssid"],
		NumSTA:                kv["num_sta"],
	}, nil
}

// Config is hostapd's GET_CONFIG reply.
type Config struct {
	BSSID             string
	SSID              string
	WPSState          bool
	WPA               int
	KeyMgmt           string
	GroupCipher       string
	RSNPairwiseCipher string
	WPAPairwiseCipher string
}

func parseConfig(response string) (Config, error) {
	kv := parseKV(response)
	if len(kv) == 0 {
		return Config{}, wifictrl.ParsingConfigError{Response: response}
	}
	wpa, _ := strconv.Atoi(first(kv, "wpa"))
	return Config{
		BSSID:             first(kv, "bssid"),
		SSID:              first(kv, "ssid"),
		WPSState:          first(kv, "wps_state") == "enabled",
		WPA:               wpa,
		KeyMgmt:           first(kv, "key_mgmt"),
		GroupCipher:       first(kv, "group_cipher"),
		RSNPairwiseCipher: first(kv, "rsn_pairwise_cipher"),
		WPAPairwiseCipher: first(kv, "wpa_pairwise_cipher"),
	}, nil
}
