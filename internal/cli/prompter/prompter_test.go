package prompter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withInput(t *testing.T, input string) {
	SetInput(strings.NewReader(input))
	t.Cleanup(ResetInput)
}

func TestPromptString(t *testing.T) {
	withInput(t, "  dana_d \n")
	got, err := PromptString("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "dana_d", got)
}

func TestPromptStringWithoutNewline(t *testing.T) {
	withInput(t, "last-line")
	got, err := PromptString("> ")
	require.NoError(t, err)
	assert.Equal(t, "last-line", got)
}

func TestPromptPasswordFallsBackWhenPiped(t *testing.T) {
	withInput(t, "hunter22\n")
	got, err := PromptPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "hunter22", got)
}

func TestPromptConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false} {
		withInput(t, input)
		got, err := PromptConfirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, want, got, input)
	}
}

func TestSuccessivePromptsShareInput(t *testing.T) {
	withInput(t, "alice\nsecret\ny\n")

	name, err := PromptString("Username: ")
	require.NoError(t, err)
	pw, err := PromptPassword("Password: ")
	require.NoError(t, err)
	ok, err := PromptConfirm("Sure?")
	require.NoError(t, err)

	assert.Equal(t, "alice", name)
	assert.Equal(t, "secret", pw)
	assert.True(t, ok)
}
