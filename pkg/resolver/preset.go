// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"slices"
	"strings"
)

// Preset is a built-in shortcut for a well known public resolver
type Preset string

const (
	// PresetCustom selects the custom address of the configuration
	PresetCustom        Preset = "CUSTOM"
	PresetGoogle        Preset = "GOOGLE"
	PresetGoogleDoH     Preset = "GOOGLE_DOH"
	PresetCloudflare    Preset = "CLOUDFLARE"
	PresetCloudflareDoH Preset = "CLOUDFLARE_DOH"
)

var presets = map[Preset]string{
	PresetCustom:        "",
	PresetGoogle:        "8.8.8.8",
	PresetGoogleDoH:     "https://8.8.8.8/dns-query",
	PresetCloudflare:    "1.1.1.1",
	PresetCloudflareDoH: "https://1.1.1.1/dns-query",
}

// ParsePreset looks up a preset by its case-insensitive name.
// The empty name selects PresetCustom.
func ParsePreset(name string) (Preset, bool) {
	if name == "" {
		return PresetCustom, true
	}
	p := Preset(strings.ToUpper(strings.TrimSpace(name)))
	_, ok := presets[p]
	return p, ok
}

// Address returns the resolver address of the preset, empty for PresetCustom
func (p Preset) Address() string {
	return presets[p]
}

// Presets returns the names of all presets, sorted
func Presets() []string {
	names := make([]string, 0, len(presets))
	for p := range presets {
		names = append(names, string(p))
	}
	slices.Sort(names)
	return names
}
