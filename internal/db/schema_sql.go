package db

const schemaSQL = `
-- Workspace metadata (single row per database)
CREATE TABLE IF NOT EXISTS huddle_workspace (
  guid TEXT PRIMARY KEY,               -- e.g., "wks-a1b2c3d4"
  name TEXT NOT NULL,
  join_code TEXT NOT NULL,
  created_at INTEGER NOT NULL          -- unix ms
);

-- Workspace members
CREATE TABLE IF NOT EXISTS huddle_members (
  guid TEXT PRIMARY KEY,               -- e.g., "mbr-a1b2c3d4"
  name TEXT NOT NULL UNIQUE,
  image TEXT,                          -- avatar storage ref
  role TEXT NOT NULL DEFAULT 'member', -- 'admin' or 'member'
  joined_at INTEGER NOT NULL
);

-- Channels
CREATE TABLE IF NOT EXISTS huddle_channels (
  guid TEXT PRIMARY KEY,               -- e.g., "chn-a1b2c3d4"
  name TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL
);

-- Direct conversations between two members
CREATE TABLE IF NOT EXISTS huddle_conversations (
  guid TEXT PRIMARY KEY,               -- e.g., "cnv-a1b2c3d4"
  member_one TEXT NOT NULL,
  member_two TEXT NOT NULL,
  FOREIGN KEY (member_one) REFERENCES huddle_members(guid),
  FOREIGN KEY (member_two) REFERENCES huddle_members(guid)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_huddle_conversations_pair
  ON huddle_conversations(member_one, member_two);

-- Messages: exactly one of channel_id / conversation_id is set;
-- replies carry the root message guid in parent_id
CREATE TABLE IF NOT EXISTS huddle_messages (
  guid TEXT PRIMARY KEY,               -- e.g., "msg-a1b2c3d4"
  ts INTEGER NOT NULL,                 -- unix ms creation time
  channel_id TEXT,
  conversation_id TEXT,
  parent_id TEXT,                      -- thread root guid, null for top-level
  member_id TEXT NOT NULL,
  body TEXT NOT NULL,                  -- serialized rich-text payload
  image TEXT,                          -- blob storage ref
  edited_at INTEGER,                   -- unix ms of last edit
  FOREIGN KEY (member_id) REFERENCES huddle_members(guid)
);

CREATE INDEX IF NOT EXISTS idx_huddle_messages_channel ON huddle_messages(channel_id, ts);
CREATE INDEX IF NOT EXISTS idx_huddle_messages_conversation ON huddle_messages(conversation_id, ts);
CREATE INDEX IF NOT EXISTS idx_huddle_messages_parent ON huddle_messages(parent_id, ts);

-- Reactions: one row per (message, member, value)
CREATE TABLE IF NOT EXISTS huddle_reactions (
  message_guid TEXT NOT NULL,
  member_guid TEXT NOT NULL,
  value TEXT NOT NULL,                 -- emoji value
  reacted_at INTEGER NOT NULL,
  PRIMARY KEY (message_guid, member_guid, value),
  FOREIGN KEY (member_guid) REFERENCES huddle_members(guid)
);

CREATE INDEX IF NOT EXISTS idx_huddle_reactions_message ON huddle_reactions(message_guid);

-- Uploaded image blobs
CREATE TABLE IF NOT EXISTS huddle_blobs (
  guid TEXT PRIMARY KEY,               -- e.g., "blob-<uuid>"
  content_type TEXT,
  size INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
`
