// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

// MergeStyles computes a shallow per-key merge of override over base:
// keys only in base keep their base value, keys only in override are
// added, and on conflict the override value wins. Neither input is
// mutated; the result is always a fresh map.
func MergeStyles(base map[string]string, override Styles) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
