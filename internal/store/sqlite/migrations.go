package sqlite

// migrations are applied in order; the index of the last applied one is kept
// in PRAGMA user_version.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS permissions (
    player      TEXT NOT NULL,
    node        TEXT NOT NULL,
    allowed     BOOLEAN NOT NULL,
    updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (player, node)
);

CREATE INDEX IF NOT EXISTS idx_permissions_player ON permissions(player);
`,
}
