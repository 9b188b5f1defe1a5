package db

import (
	"database/sql"
	"strings"

	"github.com/huddlechat/huddle/internal/types"
)

// GetReactionSummaries loads aggregated reactions for multiple
// messages, ordered by first application of each value.
func GetReactionSummaries(db *sql.DB, messageGUIDs []string) (map[string][]types.ReactionSummary, error) {
	result := make(map[string][]types.ReactionSummary)
	if len(messageGUIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(messageGUIDs))
	args := make([]any, len(messageGUIDs))
	for i, guid := range messageGUIDs {
		placeholders[i] = "?"
		args[i] = guid
	}

	rows, err := db.Query(`
		SELECT message_guid, value, member_guid
		FROM huddle_reactions
		WHERE message_guid IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY reacted_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msgGUID, value, memberGUID string
		if err := rows.Scan(&msgGUID, &value, &memberGUID); err != nil {
			return nil, err
		}
		summaries := result[msgGUID]
		idx := -1
		for i := range summaries {
			if summaries[i].Value == value {
				idx = i
				break
			}
		}
		if idx == -1 {
			summaries = append(summaries, types.ReactionSummary{Value: value})
			idx = len(summaries) - 1
		}
		summaries[idx].MemberIDs = append(summaries[idx].MemberIDs, memberGUID)
		summaries[idx].Count = len(summaries[idx].MemberIDs)
		result[msgGUID] = summaries
	}
	return result, rows.Err()
}

// ToggleReaction adds the member's reaction with the given value, or
// removes it if already present. Reports whether the reaction is
// present after the call.
func ToggleReaction(db *sql.DB, messageGUID, memberGUID, value string, now int64) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM huddle_reactions
		WHERE message_guid = ? AND member_guid = ? AND value = ?
	`, messageGUID, memberGUID, value).Scan(&exists)
	if err != nil {
		return false, err
	}

	added := exists == 0
	if added {
		_, err = tx.Exec(`
			INSERT INTO huddle_reactions (message_guid, member_guid, value, reacted_at)
			VALUES (?, ?, ?, ?)
		`, messageGUID, memberGUID, value, now)
	} else {
		_, err = tx.Exec(`
			DELETE FROM huddle_reactions
			WHERE message_guid = ? AND member_guid = ? AND value = ?
		`, messageGUID, memberGUID, value)
	}
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return added, nil
}
