package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandle struct {
	lines []string
}

func (h *recordingHandle) Deliver(line string) error {
	h.lines = append(h.lines, line)
	return nil
}

func TestResolveSelectionIsTotal(t *testing.T) {
	r := NewRooms(nil)
	cases := []struct {
		name  string
		input string
		room  string
		ok    bool
	}{
		{"empty", "", "General", false},
		{"non numeric", "abc", "General", false},
		{"negative", "-1", "General", false},
		{"zero", "0", "General", false},
		{"out of range", "99", "General", false},
		{"first", "1", "General", true},
		{"last", "5", "Help", true},
		{"middle", "3", "Linux & Open Source", true},
		{"whitespace padded", " 2 ", "Python", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room, ok := r.ResolveSelection(tc.input)
			assert.Equal(t, tc.room, room)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestPromptListsCatalogInOrder(t *testing.T) {
	r := NewRooms([]string{"Red", "Blue"})
	prompt := r.Prompt()
	assert.True(t, strings.HasPrefix(prompt, "Available rooms:\n"))
	assert.Contains(t, prompt, "1. Red\n")
	assert.Contains(t, prompt, "2. Blue\n")
	assert.True(t, strings.HasSuffix(prompt, "Enter the number of the room you want to join:"))
}

func TestJoinLeave(t *testing.T) {
	r := NewRooms(nil)
	h := &recordingHandle{}

	require.NoError(t, r.Join("General", "alice", h))
	room, ok := r.RoomOf("alice")
	require.True(t, ok)
	assert.Equal(t, "General", room)

	room, ok = r.Leave("alice")
	require.True(t, ok)
	assert.Equal(t, "General", room)

	// 幂等：再次 Leave 返回"无房间"
	room, ok = r.Leave("alice")
	assert.False(t, ok)
	assert.Equal(t, "", room)
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	r := NewRooms(nil)
	h := &recordingHandle{}
	require.NoError(t, r.Join("General", "alice", h))
	require.NoError(t, r.Join("Help", "alice", h))

	// 任一时刻至多出现在一个房间
	assert.Empty(t, r.Members("General"))
	require.Len(t, r.Members("Help"), 1)
	room, _ := r.RoomOf("alice")
	assert.Equal(t, "Help", room)
}

func TestJoinUnknownRoom(t *testing.T) {
	r := NewRooms(nil)
	assert.Error(t, r.Join("Nope", "alice", &recordingHandle{}))
}

func TestMembersSnapshot(t *testing.T) {
	r := NewRooms(nil)
	require.NoError(t, r.Join("General", "alice", &recordingHandle{}))
	require.NoError(t, r.Join("General", "bob", &recordingHandle{}))
	require.NoError(t, r.Join("Help", "carol", &recordingHandle{}))

	members := r.Members("General")
	require.Len(t, members, 2)
	names := []string{members[0].Identity, members[1].Identity}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	// 快照是副本，之后的 Leave 不影响已取得的快照
	r.Leave("alice")
	assert.Len(t, members, 2)
	assert.Len(t, r.Members("General"), 1)

	assert.ElementsMatch(t, []string{"carol"}, r.MemberNames("Help"))
}

func TestDefaultRoomIsFirstCatalogEntry(t *testing.T) {
	r := NewRooms([]string{"Lobby", "Annex"})
	assert.Equal(t, "Lobby", r.DefaultRoom())
	assert.Equal(t, []string{"Lobby", "Annex"}, r.Catalog())
}
