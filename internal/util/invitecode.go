// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"crypto/rand"
	"fmt"
)

// inviteAlphabet avoids characters that read ambiguously on paper
// invitations (0/O, 1/I/l).
const inviteAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

// InviteCodeLen is the length of generated invite codes.
const InviteCodeLen = 10

// NewInviteCode returns a random code for guest invitation links.
func NewInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
