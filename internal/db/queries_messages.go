package db

import (
	"database/sql"
	"errors"

	"github.com/huddlechat/huddle/internal/types"
)

// MessageRow is the raw database representation of a message.
type MessageRow struct {
	GUID           string
	TS             int64
	ChannelID      *string
	ConversationID *string
	ParentID       *string
	MemberID       string
	Body           string
	Image          *string
	EditedAt       *int64
}

const messageColumns = "guid, ts, channel_id, conversation_id, parent_id, member_id, body, image, edited_at"

func scanMessageRow(scanner interface{ Scan(...any) error }) (MessageRow, error) {
	var row MessageRow
	err := scanner.Scan(
		&row.GUID, &row.TS, &row.ChannelID, &row.ConversationID,
		&row.ParentID, &row.MemberID, &row.Body, &row.Image, &row.EditedAt,
	)
	return row, err
}

// InsertMessage writes a new message row.
func InsertMessage(db *sql.DB, row MessageRow) error {
	_, err := db.Exec(`
		INSERT INTO huddle_messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.GUID, row.TS, row.ChannelID, row.ConversationID,
		row.ParentID, row.MemberID, row.Body, row.Image, row.EditedAt)
	return err
}

// GetMessageRow loads one message by guid; nil when absent.
func GetMessageRow(db *sql.DB, guid string) (*MessageRow, error) {
	row, err := scanMessageRow(db.QueryRow(`
		SELECT `+messageColumns+` FROM huddle_messages WHERE guid = ?
	`, guid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateMessageBody replaces a message body and stamps the edit time.
// Reports whether a row was updated.
func UpdateMessageBody(db *sql.DB, guid, body string, editedAt int64) (bool, error) {
	res, err := db.Exec(`
		UPDATE huddle_messages SET body = ?, edited_at = ? WHERE guid = ?
	`, body, editedAt, guid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteMessage removes a message and its reactions. Reports whether a
// row was deleted.
func DeleteMessage(db *sql.DB, guid string) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM huddle_reactions WHERE message_guid = ?`, guid); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM huddle_messages WHERE guid = ?`, guid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetMessagePage returns up to limit messages for the scope,
// newest-first, starting strictly after the keyset cursor when one is
// given.
func GetMessagePage(db *sql.DB, scope types.Scope, before *types.MessageCursor, limit int) ([]MessageRow, error) {
	var where string
	args := []any{}
	switch scope.Kind {
	case types.ScopeChannel:
		where = "channel_id = ? AND parent_id IS NULL"
		args = append(args, scope.ChannelID)
	case types.ScopeConversation:
		where = "conversation_id = ? AND parent_id IS NULL"
		args = append(args, scope.ConversationID)
	case types.ScopeThread:
		where = "parent_id = ?"
		args = append(args, scope.ParentID)
	default:
		return nil, errors.New("unknown scope kind")
	}

	if before != nil {
		where += " AND (ts < ? OR (ts = ? AND guid < ?))"
		args = append(args, before.TS, before.TS, before.GUID)
	}
	args = append(args, limit)

	rows, err := db.Query(`
		SELECT `+messageColumns+`
		FROM huddle_messages
		WHERE `+where+`
		ORDER BY ts DESC, guid DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageRow
	for rows.Next() {
		row, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ThreadSummaryRow aggregates the replies under one root message.
type ThreadSummaryRow struct {
	Count        int
	LastReplyAt  int64
	LastMemberID string
}

// GetThreadSummaries returns reply summaries for the given root
// message guids; roots without replies are absent from the map.
func GetThreadSummaries(db *sql.DB, parentGUIDs []string) (map[string]ThreadSummaryRow, error) {
	out := make(map[string]ThreadSummaryRow)
	if len(parentGUIDs) == 0 {
		return out, nil
	}

	for _, parent := range parentGUIDs {
		var summary ThreadSummaryRow
		err := db.QueryRow(`
			SELECT COUNT(*), COALESCE(MAX(ts), 0)
			FROM huddle_messages WHERE parent_id = ?
		`, parent).Scan(&summary.Count, &summary.LastReplyAt)
		if err != nil {
			return nil, err
		}
		if summary.Count == 0 {
			continue
		}
		err = db.QueryRow(`
			SELECT member_id FROM huddle_messages
			WHERE parent_id = ?
			ORDER BY ts DESC, guid DESC
			LIMIT 1
		`, parent).Scan(&summary.LastMemberID)
		if err != nil {
			return nil, err
		}
		out[parent] = summary
	}
	return out, nil
}
