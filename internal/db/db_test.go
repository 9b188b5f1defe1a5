package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huddlechat/huddle/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := OpenDatabase(filepath.Join(t.TempDir(), "huddle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Message and reaction rows reference members.
	for i, name := range []string{"ada", "grace"} {
		require.NoError(t, InsertMember(conn, types.Member{
			ID: fmt.Sprintf("mbr-%c", 'a'+i), Name: name, Role: "member", JoinedAt: int64(i),
		}))
	}
	return conn
}

func seedChannelMessages(t *testing.T, conn *sql.DB, channel string, n int) []string {
	t.Helper()
	guids := make([]string, n)
	for i := 0; i < n; i++ {
		guid := fmt.Sprintf("msg-%03d", i)
		guids[i] = guid
		require.NoError(t, InsertMessage(conn, MessageRow{
			GUID:      guid,
			TS:        int64(1000 + i),
			ChannelID: &channel,
			MemberID:  "mbr-a",
			Body:      fmt.Sprintf("message %d", i),
		}))
	}
	return guids
}

func TestMessageRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	channel := "chn-a"

	require.NoError(t, InsertMessage(conn, MessageRow{
		GUID: "msg-a", TS: 1000, ChannelID: &channel, MemberID: "mbr-a", Body: "hello",
	}))

	row, err := GetMessageRow(conn, "msg-a")
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, "hello", row.Body)
	require.Nil(t, row.EditedAt)

	updated, err := UpdateMessageBody(conn, "msg-a", "edited", 2000)
	require.NoError(t, err)
	require.True(t, updated)

	row, err = GetMessageRow(conn, "msg-a")
	require.NoError(t, err)
	require.Equal(t, "edited", row.Body)
	require.NotNil(t, row.EditedAt)
	require.Equal(t, int64(2000), *row.EditedAt)

	deleted, err := DeleteMessage(conn, "msg-a")
	require.NoError(t, err)
	require.True(t, deleted)

	row, err = GetMessageRow(conn, "msg-a")
	require.NoError(t, err)
	require.Nil(t, row)

	// Mutating a missing row reports false, not an error.
	updated, err = UpdateMessageBody(conn, "msg-a", "x", 3000)
	require.NoError(t, err)
	require.False(t, updated)
	deleted, err = DeleteMessage(conn, "msg-a")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestMessagePageKeyset(t *testing.T) {
	conn := openTestDB(t)
	seedChannelMessages(t, conn, "chn-a", 12)
	scope := types.ChannelScope("chn-a")

	first, err := GetMessagePage(conn, scope, nil, 5)
	require.NoError(t, err)
	require.Len(t, first, 5)
	require.Equal(t, "msg-011", first[0].GUID)
	require.Equal(t, "msg-007", first[4].GUID)

	second, err := GetMessagePage(conn, scope, &types.MessageCursor{
		GUID: first[4].GUID, TS: first[4].TS,
	}, 5)
	require.NoError(t, err)
	require.Len(t, second, 5)
	require.Equal(t, "msg-006", second[0].GUID)

	seen := map[string]bool{}
	for _, row := range append(first, second...) {
		require.False(t, seen[row.GUID], "guid %s delivered twice", row.GUID)
		seen[row.GUID] = true
	}

	third, err := GetMessagePage(conn, scope, &types.MessageCursor{
		GUID: second[4].GUID, TS: second[4].TS,
	}, 5)
	require.NoError(t, err)
	require.Len(t, third, 2)
	require.Equal(t, "msg-000", third[1].GUID)
}

func TestMessagePageTimestampTies(t *testing.T) {
	conn := openTestDB(t)
	channel := "chn-a"
	for _, guid := range []string{"msg-a", "msg-b", "msg-c"} {
		require.NoError(t, InsertMessage(conn, MessageRow{
			GUID: guid, TS: 1000, ChannelID: &channel, MemberID: "mbr-a", Body: "tie",
		}))
	}
	scope := types.ChannelScope("chn-a")

	first, err := GetMessagePage(conn, scope, nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"msg-c", "msg-b"}, []string{first[0].GUID, first[1].GUID})

	rest, err := GetMessagePage(conn, scope, &types.MessageCursor{GUID: "msg-b", TS: 1000}, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "msg-a", rest[0].GUID)
}

func TestMessagePageExcludesReplies(t *testing.T) {
	conn := openTestDB(t)
	channel := "chn-a"
	parent := "msg-root"
	require.NoError(t, InsertMessage(conn, MessageRow{
		GUID: parent, TS: 1000, ChannelID: &channel, MemberID: "mbr-a", Body: "root",
	}))
	require.NoError(t, InsertMessage(conn, MessageRow{
		GUID: "msg-reply", TS: 1100, ChannelID: &channel, ParentID: &parent, MemberID: "mbr-b", Body: "reply",
	}))

	page, err := GetMessagePage(conn, types.ChannelScope("chn-a"), nil, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, parent, page[0].GUID)

	replies, err := GetMessagePage(conn, types.ThreadScope(parent), nil, 10)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, "msg-reply", replies[0].GUID)
}

func TestToggleReactionSelfInverse(t *testing.T) {
	conn := openTestDB(t)
	channel := "chn-a"
	require.NoError(t, InsertMessage(conn, MessageRow{
		GUID: "msg-a", TS: 1000, ChannelID: &channel, MemberID: "mbr-a", Body: "hi",
	}))

	added, err := ToggleReaction(conn, "msg-a", "mbr-b", "thumbsup", 2000)
	require.NoError(t, err)
	require.True(t, added)

	summaries, err := GetReactionSummaries(conn, []string{"msg-a"})
	require.NoError(t, err)
	require.Len(t, summaries["msg-a"], 1)
	require.Equal(t, "thumbsup", summaries["msg-a"][0].Value)
	require.Equal(t, 1, summaries["msg-a"][0].Count)

	added, err = ToggleReaction(conn, "msg-a", "mbr-b", "thumbsup", 3000)
	require.NoError(t, err)
	require.False(t, added)

	summaries, err = GetReactionSummaries(conn, []string{"msg-a"})
	require.NoError(t, err)
	require.Empty(t, summaries["msg-a"])
}

func TestReactionSummariesGroupByValue(t *testing.T) {
	conn := openTestDB(t)
	channel := "chn-a"
	require.NoError(t, InsertMessage(conn, MessageRow{
		GUID: "msg-a", TS: 1000, ChannelID: &channel, MemberID: "mbr-a", Body: "hi",
	}))

	_, err := ToggleReaction(conn, "msg-a", "mbr-a", "wave", 2000)
	require.NoError(t, err)
	_, err = ToggleReaction(conn, "msg-a", "mbr-b", "wave", 2001)
	require.NoError(t, err)
	_, err = ToggleReaction(conn, "msg-a", "mbr-b", "fire", 2002)
	require.NoError(t, err)

	summaries, err := GetReactionSummaries(conn, []string{"msg-a"})
	require.NoError(t, err)
	require.Len(t, summaries["msg-a"], 2)
	require.Equal(t, "wave", summaries["msg-a"][0].Value)
	require.Equal(t, 2, summaries["msg-a"][0].Count)
	require.Equal(t, []string{"mbr-a", "mbr-b"}, summaries["msg-a"][0].MemberIDs)
	require.Equal(t, "fire", summaries["msg-a"][1].Value)
}

func TestThreadSummaries(t *testing.T) {
	conn := openTestDB(t)
	channel := "chn-a"
	parent := "msg-root"
	require.NoError(t, InsertMessage(conn, MessageRow{
		GUID: parent, TS: 1000, ChannelID: &channel, MemberID: "mbr-a", Body: "root",
	}))
	for i, member := range []string{"mbr-a", "mbr-b"} {
		require.NoError(t, InsertMessage(conn, MessageRow{
			GUID: fmt.Sprintf("msg-reply-%d", i), TS: int64(1100 + i),
			ChannelID: &channel, ParentID: &parent, MemberID: member, Body: "reply",
		}))
	}

	summaries, err := GetThreadSummaries(conn, []string{parent, "msg-lonely"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, 2, summaries[parent].Count)
	require.Equal(t, int64(1101), summaries[parent].LastReplyAt)
	require.Equal(t, "mbr-b", summaries[parent].LastMemberID)
}

func TestWorkspaceAndMembers(t *testing.T) {
	conn := openTestDB(t)

	w, err := GetWorkspace(conn)
	require.NoError(t, err)
	require.Nil(t, w)

	require.NoError(t, InsertWorkspace(conn, types.Workspace{
		ID: "wks-a", Name: "acme", JoinCode: "abc123", CreatedAt: 1000,
	}))
	w, err = GetWorkspace(conn)
	require.NoError(t, err)
	require.Equal(t, "acme", w.Name)

	require.NoError(t, InsertMember(conn, types.Member{
		ID: "mbr-c", Name: "lin", Role: "admin", JoinedAt: 1000,
	}))
	m, err := GetMemberByName(conn, "lin")
	require.NoError(t, err)
	require.Equal(t, "mbr-c", m.ID)

	missing, err := GetMember(conn, "mbr-zz")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestConversationPairOrder(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, InsertConversation(conn, types.Conversation{
		ID: "cnv-a", MemberOneID: "mbr-a", MemberTwoID: "mbr-b",
	}))

	c, err := GetConversation(conn, "mbr-b", "mbr-a")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, "cnv-a", c.ID)

	c, err = GetConversation(conn, "mbr-a", "mbr-c")
	require.NoError(t, err)
	require.Nil(t, c)
}
