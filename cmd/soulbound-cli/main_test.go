package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulbound/soulbound-server/internal/server"
)

func TestParseCommand(t *testing.T) {
	msg, quit, err := parseCommand("play 2 abc")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, &server.ClientMessage{Type: server.MessagePlayCard, HandIndex: 2, TargetID: "abc"}, msg)

	msg, _, err = parseCommand("  end ")
	require.NoError(t, err)
	assert.Equal(t, server.MessageEndTurn, msg.Type)

	msg, quit, err = parseCommand("")
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.False(t, quit)

	_, quit, _ = parseCommand("quit")
	assert.True(t, quit)

	_, _, err = parseCommand("play x")
	require.Error(t, err)
	_, _, err = parseCommand("play")
	require.Error(t, err)
	_, _, err = parseCommand("dance")
	require.Error(t, err)
}
