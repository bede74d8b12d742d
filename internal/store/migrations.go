package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create status checks",
		SQL: `
			CREATE TABLE status_checks (
				id           TEXT PRIMARY KEY,
				client_name  TEXT NOT NULL,
				timestamp    TEXT NOT NULL
			);

			CREATE INDEX idx_status_checks_timestamp ON status_checks (timestamp);
		`,
	},
	{
		Version: 2,
		Name:    "create agent runs",
		SQL: `
			CREATE TABLE agent_runs (
				id           TEXT PRIMARY KEY,
				operation    TEXT NOT NULL,
				variant      TEXT NOT NULL DEFAULT '',
				success      INTEGER NOT NULL,
				error        TEXT NOT NULL DEFAULT '',
				duration_ms  INTEGER NOT NULL DEFAULT 0,
				created_at   TEXT NOT NULL
			);

			CREATE INDEX idx_agent_runs_created ON agent_runs (created_at);
			CREATE INDEX idx_agent_runs_operation ON agent_runs (operation);
		`,
	},
}
