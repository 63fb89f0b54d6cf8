package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/soulbound/soulbound-server/internal/game/rules"
)

func TestJournalRecorderSavesOnGameOver(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, mixedCatalog(t), 2, fixedRoles{rules.RoleTrueSoul, rules.RoleForsaken})
	rec := NewJournalRecorder(h.coord, "session-1", dir, zaptest.NewLogger(t))

	require.NoError(t, h.coord.RegisterPlayer("p1", "Ann"))
	require.NoError(t, h.coord.RegisterPlayer("p2", "Bob"))
	require.NoError(t, h.coord.Disconnect("p2"))
	require.Equal(t, rules.PhaseFinished, h.session.Phase())

	journal := rec.Journal()
	require.Equal(t, len(h.events), journal.Size())

	_, err := os.Stat(filepath.Join(dir, "session-1.journal"))
	require.NoError(t, err, "game over writes the journal")

	loaded, err := LoadJournal(dir, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", loaded.SessionID)
	assert.Equal(t, journal.Size(), loaded.Size())
	assert.Equal(t, journal.Checksum(), loaded.Checksum())

	last, ok := loaded.At(loaded.Size() - 1)
	require.True(t, ok)
	assert.Equal(t, rules.EventGameOver, last.Type)
	assert.Equal(t, rules.SideTrueSouls.String(), last.Side)

	// Events after game over are picked up by Close.
	require.NoError(t, h.coord.Disconnect("p1"))
	rec.Close()
	loaded, err = LoadJournal(dir, "session-1")
	require.NoError(t, err)
	assert.Equal(t, journal.Size(), loaded.Size())
	last, _ = loaded.At(loaded.Size() - 1)
	assert.Equal(t, rules.EventPlayerLeft, last.Type)
}

func TestJournalCursor(t *testing.T) {
	j := NewJournal("s")
	for _, typ := range []rules.EventType{rules.EventPlayerRegistered, rules.EventGameStarted, rules.EventTurnStarted} {
		j.Record(rules.NewEvent(typ, "p1"))
	}

	evt, ok := j.Next()
	require.True(t, ok)
	assert.Equal(t, rules.EventPlayerRegistered, evt.Type)

	assert.Equal(t, 3, j.Skip(10))
	_, ok = j.Next()
	assert.False(t, ok)

	evt, ok = j.Previous()
	require.True(t, ok)
	assert.Equal(t, rules.EventTurnStarted, evt.Type)

	assert.Equal(t, 0, j.Skip(-10))
	_, ok = j.Previous()
	assert.False(t, ok)

	j.Rewind()
	evt, _ = j.Next()
	assert.Equal(t, rules.EventPlayerRegistered, evt.Type)

	_, ok = j.At(3)
	assert.False(t, ok)
}

func TestJournalChecksumIgnoresIdentityAndTime(t *testing.T) {
	a, b := NewJournal("a"), NewJournal("b")
	a.Record(rules.NewEventWithAmount(rules.EventDamaged, "p1", 2))
	b.Record(rules.NewEventWithAmount(rules.EventDamaged, "p1", 2))
	assert.Equal(t, a.Checksum(), b.Checksum())

	b.Record(rules.NewEvent(rules.EventDied, "p1"))
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}

func TestJournalRecordCopiesHand(t *testing.T) {
	j := NewJournal("s")
	evt := rules.NewEvent(rules.EventHandChanged, "p1")
	evt.Hand = []string{"a", "b"}
	j.Record(evt)
	evt.Hand[0] = "z"

	got, _ := j.At(0)
	assert.Equal(t, []string{"a", "b"}, got.Hand)
}

func TestLoadJournalErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadJournal(dir, "missing")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.journal"), []byte("not gzip"), 0o644))
	_, err = LoadJournal(dir, "junk")
	require.Error(t, err)
}

func TestJournalRecorderSavesOnStall(t *testing.T) {
	dir := t.TempDir()
	h := startedHarness(t, mixedCatalog(t), rules.RoleTrueSoul, rules.RoleForsaken)
	rec := NewJournalRecorder(h.coord, "stalled", dir, zaptest.NewLogger(t))
	h.session.evaluate = func([]rules.Combatant) rules.Side { return rules.SideNone }
	h.player("p2").Alive = false
	h.setHand("p1")

	require.ErrorIs(t, h.session.EndTurn("p1"), ErrSessionStalled)

	loaded, err := LoadJournal(dir, "stalled")
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Size())
	evt, _ := loaded.At(0)
	assert.Equal(t, rules.EventSessionStalled, evt.Type)
	rec.Close()
}
