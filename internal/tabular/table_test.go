package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participantTable() *Table {
	t := New()
	t.Append(Row{"participantId": float64(1), "championName": "Yasuo", "teamId": float64(100)},
		[]string{"participantId", "championName", "teamId"})
	t.Append(Row{"participantId": float64(2), "championName": "Irelia", "teamId": float64(200)},
		[]string{"participantId", "championName", "teamId"})
	return t
}

func TestAppendUnionsColumns(t *testing.T) {
	tbl := New()
	tbl.Append(Row{"type": "WARD_PLACED", "creatorId": float64(1)}, []string{"type", "creatorId"})
	tbl.Append(Row{"type": "CHAMPION_KILL", "killerId": float64(2), "victimId": float64(1)},
		[]string{"type", "killerId", "victimId"})

	assert.Equal(t, []string{"type", "creatorId", "killerId", "victimId"}, tbl.Columns)
	// Optional fields of other event types read back as nil.
	assert.Nil(t, tbl.Get(0, "killerId"))
	assert.Nil(t, tbl.Get(1, "creatorId"))
}

func TestLeftJoinKeepsUnmatchedRows(t *testing.T) {
	events := New()
	events.Append(Row{"type": "CHAMPION_KILL", "killerId": float64(1)}, []string{"type", "killerId"})
	// Executed by a turret: no killer participant.
	events.Append(Row{"type": "CHAMPION_KILL"}, []string{"type"})

	joined := events.LeftJoin(participantTable(), "killerId", "participantId", "_killer")

	require.Equal(t, 2, joined.Len())
	assert.Equal(t, "Yasuo", joined.Get(0, "championName"))
	assert.Nil(t, joined.Get(1, "championName"))
	assert.Nil(t, joined.Get(1, "participantId"))
}

func TestJoinSuffixOnCollision(t *testing.T) {
	events := New()
	events.Append(Row{"participantId": float64(1), "victimId": float64(2)},
		[]string{"participantId", "victimId"})

	meta := participantTable()
	joined := events.LeftJoin(meta, "participantId", "participantId", "_info")
	joined = joined.LeftJoin(meta, "victimId", "participantId", "_victim")

	require.Equal(t, 1, joined.Len())
	// First join keeps plain names where free, suffixes the colliding key.
	assert.Equal(t, "Yasuo", joined.Get(0, "championName"))
	assert.Equal(t, float64(1), joined.Get(0, "participantId_info"))
	// Second join suffixes everything that now collides.
	assert.Equal(t, "Irelia", joined.Get(0, "championName_victim"))
	assert.Equal(t, float64(2), joined.Get(0, "participantId_victim"))
}

func TestInnerJoinDropsUnmatched(t *testing.T) {
	frames := New()
	frames.Append(Row{"participantId": float64(1), "totalGold": float64(500)},
		[]string{"participantId", "totalGold"})
	frames.Append(Row{"participantId": float64(9), "totalGold": float64(0)},
		[]string{"participantId", "totalGold"})

	joined := frames.InnerJoin(participantTable(), "participantId", "participantId", "_info")
	require.Equal(t, 1, joined.Len())
	assert.Equal(t, "Yasuo", joined.Get(0, "championName"))
}

func TestPartitionReindexesGroups(t *testing.T) {
	tbl := New()
	for frame := 0; frame < 3; frame++ {
		for pid := 1; pid <= 2; pid++ {
			tbl.Append(Row{"participantId": float64(pid), "frame": float64(frame)},
				[]string{"participantId", "frame"})
		}
	}

	groups, err := tbl.Partition("participantId")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, key := range []string{"1", "2"} {
		sub := groups[key]
		require.NotNil(t, sub, "missing partition %s", key)
		assert.Equal(t, 3, sub.Len())
		assert.Equal(t, tbl.Columns, sub.Columns)
		// Rows stay in original order within each group.
		assert.Equal(t, float64(0), sub.Get(0, "frame"))
		assert.Equal(t, float64(2), sub.Get(2, "frame"))
	}
}

func TestPartitionEmptyTable(t *testing.T) {
	_, err := New().Partition("participantId")
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestKeyStringNormalisesNumbers(t *testing.T) {
	k, ok := KeyString(float64(7))
	require.True(t, ok)
	assert.Equal(t, "7", k)

	_, ok = KeyString(nil)
	assert.False(t, ok)
}
