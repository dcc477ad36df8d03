// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package site maintains the ordered block sequence of a wedding site
// under edit and the publish/access-control lifecycle around it.
package site

import (
	"fmt"

	"github.com/haasivu/haasivu/internal/block"
)

// Direction of a single-position block move.
type Direction string

// Move directions.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ErrIndexOutOfRange is returned by sequence operations given an index
// outside the current sequence. Boundary moves are not errors; they are
// no-ops.
var ErrIndexOutOfRange = fmt.Errorf("block index out of range")

// Append returns seq with blk added at the end. The input slice is not
// mutated.
func Append(seq []block.Block, blk block.Block) []block.Block {
	out := make([]block.Block, len(seq), len(seq)+1)
	copy(out, seq)
	return append(out, blk)
}

// Move swaps the block at index with its neighbor in the given direction.
// Moving the first block up or the last block down is a no-op. The
// sequence length and the set of block ids are always preserved.
func Move(seq []block.Block, index int, dir Direction) ([]block.Block, error) {
	if index < 0 || index >= len(seq) {
		return nil, ErrIndexOutOfRange
	}
	if dir != DirectionUp && dir != DirectionDown {
		return nil, fmt.Errorf("unknown move direction %q", dir)
	}

	target := index - 1
	if dir == DirectionDown {
		target = index + 1
	}
	if target < 0 || target >= len(seq) {
		// Already at the boundary in that direction.
		out := make([]block.Block, len(seq))
		copy(out, seq)
		return out, nil
	}

	out := make([]block.Block, len(seq))
	copy(out, seq)
	out[index], out[target] = out[target], out[index]
	return out, nil
}

// Replace substitutes the data payload of the block at index wholesale.
// The block's id and type are unchanged; its type must match the payload.
func Replace(seq []block.Block, index int, data block.Data) ([]block.Block, error) {
	if index < 0 || index >= len(seq) {
		return nil, ErrIndexOutOfRange
	}
	if seq[index].Type != data.BlockType() {
		return nil, fmt.Errorf("payload type %s does not match block type %s",
			data.BlockType(), seq[index].Type)
	}

	out := make([]block.Block, len(seq))
	copy(out, seq)
	out[index].Data = data
	return out, nil
}

// Delete removes the block at index, preserving the relative order of the
// rest. Its id is never reused.
func Delete(seq []block.Block, index int) ([]block.Block, error) {
	if index < 0 || index >= len(seq) {
		return nil, ErrIndexOutOfRange
	}

	out := make([]block.Block, 0, len(seq)-1)
	out = append(out, seq[:index]...)
	out = append(out, seq[index+1:]...)
	return out, nil
}

// IndexOf returns the position of the block with the given id, or -1.
func IndexOf(seq []block.Block, id string) int {
	for i, b := range seq {
		if b.ID == id {
			return i
		}
	}
	return -1
}
