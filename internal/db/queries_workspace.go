package db

import (
	"database/sql"
	"errors"

	"github.com/huddlechat/huddle/internal/types"
)

// GetWorkspace returns the workspace row; nil when uninitialized.
func GetWorkspace(db *sql.DB) (*types.Workspace, error) {
	var w types.Workspace
	err := db.QueryRow(`
		SELECT guid, name, join_code, created_at FROM huddle_workspace LIMIT 1
	`).Scan(&w.ID, &w.Name, &w.JoinCode, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// InsertWorkspace writes the workspace row.
func InsertWorkspace(db *sql.DB, w types.Workspace) error {
	_, err := db.Exec(`
		INSERT INTO huddle_workspace (guid, name, join_code, created_at)
		VALUES (?, ?, ?, ?)
	`, w.ID, w.Name, w.JoinCode, w.CreatedAt)
	return err
}

// GetMember loads one member by guid; nil when absent.
func GetMember(db *sql.DB, guid string) (*types.Member, error) {
	var m types.Member
	var image sql.NullString
	err := db.QueryRow(`
		SELECT guid, name, image, role, joined_at FROM huddle_members WHERE guid = ?
	`, guid).Scan(&m.ID, &m.Name, &image, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Image = image.String
	return &m, nil
}

// GetMemberByName loads one member by display name; nil when absent.
func GetMemberByName(db *sql.DB, name string) (*types.Member, error) {
	var m types.Member
	var image sql.NullString
	err := db.QueryRow(`
		SELECT guid, name, image, role, joined_at FROM huddle_members WHERE name = ?
	`, name).Scan(&m.ID, &m.Name, &image, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Image = image.String
	return &m, nil
}

// InsertMember writes a new member row.
func InsertMember(db *sql.DB, m types.Member) error {
	_, err := db.Exec(`
		INSERT INTO huddle_members (guid, name, image, role, joined_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Image, m.Role, m.JoinedAt)
	return err
}

// ListMembers returns all members ordered by join time.
func ListMembers(db *sql.DB) ([]types.Member, error) {
	rows, err := db.Query(`
		SELECT guid, name, image, role, joined_at FROM huddle_members ORDER BY joined_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Member
	for rows.Next() {
		var m types.Member
		var image sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &image, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Image = image.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetChannel loads one channel by guid; nil when absent.
func GetChannel(db *sql.DB, guid string) (*types.Channel, error) {
	var c types.Channel
	err := db.QueryRow(`
		SELECT guid, name, created_at FROM huddle_channels WHERE guid = ?
	`, guid).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertChannel writes a new channel row.
func InsertChannel(db *sql.DB, c types.Channel) error {
	_, err := db.Exec(`
		INSERT INTO huddle_channels (guid, name, created_at)
		VALUES (?, ?, ?)
	`, c.ID, c.Name, c.CreatedAt)
	return err
}

// ListChannels returns all channels ordered by creation.
func ListChannels(db *sql.DB) ([]types.Channel, error) {
	rows, err := db.Query(`
		SELECT guid, name, created_at FROM huddle_channels ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Channel
	for rows.Next() {
		var c types.Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetConversation returns the conversation between two members
// regardless of pair order; nil when absent.
func GetConversation(db *sql.DB, memberA, memberB string) (*types.Conversation, error) {
	var c types.Conversation
	err := db.QueryRow(`
		SELECT guid, member_one, member_two FROM huddle_conversations
		WHERE (member_one = ? AND member_two = ?) OR (member_one = ? AND member_two = ?)
	`, memberA, memberB, memberB, memberA).Scan(&c.ID, &c.MemberOneID, &c.MemberTwoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConversationByID loads one conversation by guid; nil when absent.
func GetConversationByID(db *sql.DB, guid string) (*types.Conversation, error) {
	var c types.Conversation
	err := db.QueryRow(`
		SELECT guid, member_one, member_two FROM huddle_conversations WHERE guid = ?
	`, guid).Scan(&c.ID, &c.MemberOneID, &c.MemberTwoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertConversation writes a new conversation row.
func InsertConversation(db *sql.DB, c types.Conversation) error {
	_, err := db.Exec(`
		INSERT INTO huddle_conversations (guid, member_one, member_two)
		VALUES (?, ?, ?)
	`, c.ID, c.MemberOneID, c.MemberTwoID)
	return err
}

// InsertBlob records an uploaded blob.
func InsertBlob(db *sql.DB, guid, contentType string, size int64, createdAt int64) error {
	_, err := db.Exec(`
		INSERT INTO huddle_blobs (guid, content_type, size, created_at)
		VALUES (?, ?, ?, ?)
	`, guid, contentType, size, createdAt)
	return err
}
