package db

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "kv",
		sql: `
			CREATE TABLE kv (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`,
	},
	{
		version: 2,
		name:    "users_and_events",
		sql: `
			CREATE TABLE users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				theme_name TEXT NOT NULL,
				theme_color TEXT NOT NULL,
				created_at TEXT NOT NULL
			);

			CREATE TABLE events (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				type TEXT NOT NULL,
				entity_type TEXT NOT NULL,
				entity_id TEXT NOT NULL,
				payload_json TEXT,
				metadata_json TEXT
			);

			CREATE INDEX idx_events_entity ON events (entity_type, entity_id);
			CREATE INDEX idx_events_timestamp ON events (timestamp, id);
		`,
	},
	{
		version: 3,
		name:    "demo_users",
		sql: `
			INSERT INTO users (id, name, theme_name, theme_color, created_at) VALUES
				('u_1001', 'Alice Johnson', 'Sunset', '#c96a2b', '2024-01-01T00:00:01Z'),
				('u_1002', 'Bruno Lee', 'Ocean', '#2b9fc9', '2024-01-01T00:00:02Z'),
				('u_1003', 'Camila R.', 'Midnight', '#111827', '2024-01-01T00:00:03Z'),
				('u_1004', 'Diego M.', 'Sunset', '#c96a2b', '2024-01-01T00:00:04Z'),
				('u_1005', 'Eve K.', 'Ocean', '#2b9fc9', '2024-01-01T00:00:05Z');
		`,
	},
}
