// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const blockColumns = `id, site_id, type, position, data, created_at, updated_at`

func scanBlock(row interface{ Scan(...any) error }) (Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.SiteID, &b.Type, &b.Position, &b.Data,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBlockParams holds the fields for CreateBlock.
type CreateBlockParams struct {
	ID        string
	SiteID    int64
	Type      string
	Position  int64
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateBlock inserts a new block row.
func (q *Queries) CreateBlock(ctx context.Context, arg CreateBlockParams) (Block, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO blocks (id, site_id, type, position, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+blockColumns,
		arg.ID, arg.SiteID, arg.Type, arg.Position, arg.Data,
		arg.CreatedAt, arg.UpdatedAt)
	return scanBlock(row)
}

// GetBlock fetches a block by id within a site.
func (q *Queries) GetBlock(ctx context.Context, siteID int64, id string) (Block, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE site_id = ? AND id = ?`,
		siteID, id)
	return scanBlock(row)
}

// ListBlocks returns a site's blocks in sequence order.
func (q *Queries) ListBlocks(ctx context.Context, siteID int64) ([]Block, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE site_id = ? ORDER BY position`,
		siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// MaxBlockPosition returns the highest position in a site's sequence,
// or -1 when the sequence is empty.
func (q *Queries) MaxBlockPosition(ctx context.Context, siteID int64) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM blocks WHERE site_id = ?`,
		siteID).Scan(&pos)
	return pos, err
}

// UpdateBlockDataParams holds the fields for UpdateBlockData.
type UpdateBlockDataParams struct {
	SiteID    int64
	ID        string
	Data      string
	UpdatedAt time.Time
}

// UpdateBlockData replaces a block's data payload wholesale.
func (q *Queries) UpdateBlockData(ctx context.Context, arg UpdateBlockDataParams) (Block, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE blocks SET data = ?, updated_at = ?
		WHERE site_id = ? AND id = ?
		RETURNING `+blockColumns,
		arg.Data, arg.UpdatedAt, arg.SiteID, arg.ID)
	return scanBlock(row)
}

// SetBlockPosition moves one block to an explicit position.
func (q *Queries) SetBlockPosition(ctx context.Context, siteID int64, id string, position int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE blocks SET position = ? WHERE site_id = ? AND id = ?`,
		position, siteID, id)
	return err
}

// DeleteBlock removes a block and closes the position gap it leaves, so
// remaining positions stay dense and ordered.
func (q *Queries) DeleteBlock(ctx context.Context, siteID int64, id string, position int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE site_id = ? AND id = ?`, siteID, id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE blocks SET position = position - 1 WHERE site_id = ? AND position > ?`,
		siteID, position)
	return err
}
