package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptgboard/internal/model"
)

func TestEtherpadURL(t *testing.T) {
	doc := fixture()
	doc.Etherpads["nova"] = "https://pad.example.org/nova"

	assert.Equal(t, "https://pad.example.org/nova", EtherpadURL(doc, "nova", ""))
	assert.Equal(t, "https://etherpad.opendev.org/p/ptg2023-swift", EtherpadURL(doc, "swift", ""))
	assert.Equal(t, "https://pads.local/ptg2023-swift", EtherpadURL(doc, "swift", "https://pads.local/"))
	assert.Equal(t, "https://etherpad.opendev.org/p/-swift", EtherpadURL(nil, "swift", ""))
}

func TestResolverBoard(t *testing.T) {
	doc := fixture()
	doc.Tracks = []model.TrackCode{"swift", "keystone", "nova", "swift"}
	doc.Now["keystone"] = "Tokens with #nova"
	doc.Next["keystone"] = []string{"Policy", "see https://example.org/p"}

	board := NewResolver(doc, Aggregate(doc.LastCheckIn)).Board("")
	require.Len(t, board, 3)
	assert.Equal(t, model.TrackCode("keystone"), board[0].Badge.Track)
	assert.Equal(t, model.TrackCode("nova"), board[1].Badge.Track)
	assert.Equal(t, model.TrackCode("swift"), board[2].Badge.Track)

	ks := board[0]
	assert.Equal(t, "http://example.com/k", ks.Badge.URL)
	assert.Equal(t, []string{"Zed", "amy"}, ks.Checkins)
	assert.Equal(t, []Fragment{
		{Kind: FragmentText, Text: "Tokens with "},
		{Kind: FragmentTag, Text: "nova"},
	}, ks.Now)
	require.Len(t, ks.Next, 2)
	assert.Equal(t, FragmentLink, ks.Next[1][1].Kind)

	// Outside a cell nova has no URL at all.
	assert.False(t, board[1].Badge.Clickable)
	assert.Equal(t, "#596468", board[1].Badge.Color)
	assert.Nil(t, board[1].Now)
}

func TestResolveMotd(t *testing.T) {
	m := ResolveMotd(model.Motd{Message: "Lunch: www.example.org", Level: "danger"})
	assert.Equal(t, MotdDanger, m.Level)
	assert.False(t, m.Empty())
	require.Len(t, m.Fragments, 2)
	assert.Equal(t, "http://www.example.org", m.Fragments[1].Href)

	m = ResolveMotd(model.Motd{Message: "hi", Level: "shouting"})
	assert.Equal(t, MotdInfo, m.Level)

	assert.True(t, ResolveMotd(model.Motd{}).Empty())
}
