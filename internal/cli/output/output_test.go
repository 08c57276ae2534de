package output

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/cli/config"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", format)

	color.NoColor = true
	buf := &bytes.Buffer{}
	Out = buf
	t.Cleanup(func() { Out = color.Output })
	return buf
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("table"))
	assert.False(t, ValidFormat("yaml"))
}

func TestRecordText(t *testing.T) {
	buf := capture(t, "text")
	require.NoError(t, Record("Profile", map[string]interface{}{"username": "dana", "bio": "hi"}))
	assert.Equal(t, "Profile:\nbio: hi\nusername: dana\n", buf.String())
}

func TestRecordJSON(t *testing.T) {
	buf := capture(t, "json")
	require.NoError(t, Record("ignored", map[string]interface{}{"posts": 3}))
	assert.JSONEq(t, `{"posts":3}`, buf.String())
	assert.True(t, IsJSON())
}

func TestTableAlignsColumns(t *testing.T) {
	buf := capture(t, "table")
	Table([]string{"ID", "USER"}, [][]string{{"1", "dana"}, {"22", "bo"}})
	assert.Equal(t, "ID  USER\n1   dana\n22  bo\n", buf.String())
}

func TestMessages(t *testing.T) {
	buf := capture(t, "text")
	Success("Posted %s", "abc")
	Error("boom")
	assert.Equal(t, "Posted abc\nError: boom\n", buf.String())
}
