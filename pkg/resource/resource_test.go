package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID     int
	Secret string
	Tag    string
}

var widgetResource Transformer[widget] = func(w widget) Map {
	return Merge(Map{"id": w.ID}, When(w.Tag != "", Map{"tag": w.Tag}))
}

func TestItemDropsUnlistedFields(t *testing.T) {
	out := Item(widget{ID: 1, Secret: "x"}, widgetResource)
	assert.Equal(t, Map{"id": 1}, out)

	out = Item(widget{ID: 2, Tag: "blue"}, widgetResource)
	assert.Equal(t, Map{"id": 2, "tag": "blue"}, out)
}

func TestCollectionOfNilIsEmptyArray(t *testing.T) {
	raw, err := json.Marshal(Collection[widget](nil, widgetResource))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestCollectionKeepsOrder(t *testing.T) {
	out := Collection([]widget{{ID: 3}, {ID: 1}}, widgetResource)
	require.Len(t, out, 2)
	assert.Equal(t, 3, out[0]["id"])
	assert.Equal(t, 1, out[1]["id"])
}
