package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterByHour(t *testing.T) {
	refs := []string{"Hour 1/block_001.json", "Hour 2/block_005.json", "h2_block_010.json"}

	assert.Equal(t, []string{"Hour 2/block_005.json", "h2_block_010.json"}, FilterByHour(refs, "2"))
}

func TestMatchesHour(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		hour string
		want bool
	}{
		{name: "hour with space", ref: "Hour 2 - Trafficking/block_005", hour: "2", want: true},
		{name: "hour with underscore", ref: "hour_2/block_005.json", hour: "2", want: true},
		{name: "hour with hyphen", ref: "HOUR-2/block_005.json", hour: "2", want: true},
		{name: "short form", ref: "h2_block_010.json", hour: "2", want: true},
		{name: "zero padded", ref: "Hour 02/block_010.json", hour: "2", want: true},
		{name: "hour key as input", ref: "h2_block_010.json", hour: "hour_2", want: true},
		{name: "other hour", ref: "Hour 1/block_001.json", hour: "2", want: false},
		{name: "two digit hour does not match prefix", ref: "h12_block_001.json", hour: "1", want: false},
		{name: "trailing digit does not match", ref: "Hour 20/block_001.json", hour: "2", want: false},
		{name: "block number is not an hour", ref: "Hour 1/block_2.json", hour: "2", want: false},
		{name: "h inside a word is not a prefix", ref: "math2/block_001.json", hour: "2", want: false},
		{name: "non numeric hour falls back to substring", ref: "Bonus/block_001.json", hour: "bonus", want: true},
		{name: "empty non numeric hour", ref: "Bonus/block_001.json", hour: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchesHour(tc.ref, tc.hour))
		})
	}
}

func TestFindReference(t *testing.T) {
	refs := []string{"Hour 1 - Sanitation/block_001", "Hour 1 - Sanitation/block_002"}

	got, ok := FindReference(refs, "002")
	assert.True(t, ok)
	assert.Equal(t, "Hour 1 - Sanitation/block_002", got)

	_, ok = FindReference(refs, "999")
	assert.False(t, ok)

	_, ok = FindReference(refs, "")
	assert.False(t, ok)
}

func TestBlockIDFromReference(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "Hour 1 - Sanitation/block_001", want: "001"},
		{ref: "h1_block_002.json", want: "002"},
		{ref: "Hour 3/intro.json", want: "intro"},
	}

	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			assert.Equal(t, tc.want, BlockIDFromReference(tc.ref))
		})
	}
}

func TestHourNumber(t *testing.T) {
	n, ok := HourNumber("hour_03")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = HourNumber("bonus")
	assert.False(t, ok)
}
