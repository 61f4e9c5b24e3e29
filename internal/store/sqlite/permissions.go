package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lu-zhengda/aliases/internal/store"
)

func normalizePlayer(player string) string {
	return strings.ToLower(strings.TrimSpace(player))
}

func (s *DB) SetPermission(ctx context.Context, player, node string, allowed bool) error {
	if player == "" || node == "" {
		return fmt.Errorf("player and node must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO permissions (player, node, allowed) VALUES (?, ?, ?)
		 ON CONFLICT(player, node) DO UPDATE SET allowed = excluded.allowed, updated_at = CURRENT_TIMESTAMP`,
		normalizePlayer(player), node, allowed,
	)
	if err != nil {
		return fmt.Errorf("failed to set permission %s for %s: %w", node, player, err)
	}
	return nil
}

func (s *DB) Permission(ctx context.Context, player, node string) (allowed, found bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT allowed FROM permissions WHERE player = ? AND node = ?`,
		normalizePlayer(player), node,
	).Scan(&allowed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get permission %s for %s: %w", node, player, err)
	}
	return allowed, true, nil
}

func (s *DB) ListPermissions(ctx context.Context, player string) ([]store.Permission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, node, allowed, updated_at FROM permissions WHERE player = ? ORDER BY node`,
		normalizePlayer(player),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for %s: %w", player, err)
	}
	defer rows.Close()

	var perms []store.Permission
	for rows.Next() {
		var p store.Permission
		if err := rows.Scan(&p.Player, &p.Node, &p.Allowed, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (s *DB) DeletePermission(ctx context.Context, player, node string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM permissions WHERE player = ? AND node = ?`,
		normalizePlayer(player), node,
	)
	if err != nil {
		return fmt.Errorf("failed to delete permission %s for %s: %w", node, player, err)
	}
	return nil
}
