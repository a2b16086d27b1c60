package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS emails (
	label_id   TEXT NOT NULL,
	id         TEXT NOT NULL,
	position   INTEGER NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	sender     TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	label_ids  TEXT NOT NULL DEFAULT '[]',
	fetched_at DATETIME NOT NULL,
	PRIMARY KEY (label_id, id)
);

CREATE INDEX IF NOT EXISTS idx_emails_id ON emails(id);

CREATE TABLE IF NOT EXISTS suggestions (
	email_id    TEXT PRIMARY KEY,
	suggestions TEXT NOT NULL DEFAULT '[]',
	fetched_at  DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS drafts (
	id         TEXT PRIMARY KEY,
	recipient  TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	reply_to   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
