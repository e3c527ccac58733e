package store

import "database/sql"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS guild_config (
  guild_id INTEGER PRIMARY KEY,
  logs_channel_id INTEGER,
  tasks_channel_id INTEGER,
  dev_category_id INTEGER,
  task_board_channel_id INTEGER,
  task_board_message_id INTEGER,
  ai_enabled INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS guild_developers (
  guild_id INTEGER NOT NULL,
  user_id INTEGER NOT NULL,
  position INTEGER NOT NULL,
  UNIQUE(guild_id, user_id)
);

CREATE TABLE IF NOT EXISTS task_counters (
  guild_id INTEGER PRIMARY KEY,
  counter INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
  guild_id INTEGER NOT NULL,
  id INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  priority TEXT NOT NULL,
  status TEXT NOT NULL,
  creator_id INTEGER NOT NULL,
  assignee_id INTEGER,
  channel_id INTEGER,
  message_id INTEGER,
  thread_id INTEGER,
  PRIMARY KEY (guild_id, id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_guild_status ON tasks(guild_id, status);
CREATE INDEX IF NOT EXISTS idx_guild_developers_position ON guild_developers(guild_id, position);
`

func bootstrapSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
