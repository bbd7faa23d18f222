package netstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionHeader(t *testing.T) {
	tests := []struct {
		action Action
		params []ActionParam
		want   string
	}{
		{ActionStat, []ActionParam{{"implicit", "yes"}, {"encoding", "utf-8"}}, "version=1&action=stat&implicit=yes&encoding=utf-8&format=xml"},
		{ActionUpload, nil, "version=1&action=upload"},
		{ActionDir, nil, "version=1&action=dir&format=xml"},
		{ActionDelete, nil, "version=1&action=delete"},
		{ActionRmdir, nil, "version=1&action=rmdir"},
		{ActionDownload, nil, "version=1&action=download&format=xml"},
		{ActionDu, nil, "version=1&action=du&format=xml"},
		{ActionList, []ActionParam{{"max_entries", "10"}}, "version=1&action=list&max_entries=10"},
		{ActionMkdir, nil, "version=1&action=mkdir"},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			header := tt.action.Header(tt.params...)
			assert.Equal(t, tt.want, header)

			parsed, err := ActionFromHeader(header)
			require.NoError(t, err)
			assert.Equal(t, tt.action, parsed)
		})
	}
}

func TestParseAction(t *testing.T) {
	for action, name := range actionNames {
		parsed, err := ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
	}

	_, err := ParseAction("chmod")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ActionFromHeader("version=1")
	assert.ErrorIs(t, err, ErrUnknownAction)

	assert.Equal(t, "Action(42)", Action(42).String())
}
