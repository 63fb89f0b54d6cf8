package game

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soulbound/soulbound-server/internal/game/rules"
)

const journalVersion = 1

// ErrJournalChecksum is returned when a saved journal does not match its
// recorded checksum.
var ErrJournalChecksum = errors.New("journal checksum mismatch")

// Journal records every committed event of one session in publish order and
// lets a reader step through them. Record is safe to call from the dispatch
// goroutine while another goroutine saves the journal.
type Journal struct {
	SessionID string

	mu     sync.RWMutex
	events []rules.Event
	cursor int
}

// NewJournal creates an empty journal for sessionID.
func NewJournal(sessionID string) *Journal {
	return &Journal{SessionID: sessionID}
}

// Record appends an event. It has the rules.Listener signature.
func (j *Journal) Record(evt rules.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	evt.Hand = append([]string(nil), evt.Hand...)
	j.events = append(j.events, evt)
}

// Size returns the number of recorded events.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.events)
}

// At returns the event at index.
func (j *Journal) At(index int) (rules.Event, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index < 0 || index >= len(j.events) {
		return rules.Event{}, false
	}
	return j.events[index], true
}

// Rewind moves the read cursor back to the first event.
func (j *Journal) Rewind() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cursor = 0
}

// Next returns the event under the cursor and moves past it.
func (j *Journal) Next() (rules.Event, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cursor >= len(j.events) {
		return rules.Event{}, false
	}
	evt := j.events[j.cursor]
	j.cursor++
	return evt, true
}

// Previous steps the cursor back one event and returns it.
func (j *Journal) Previous() (rules.Event, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cursor == 0 {
		return rules.Event{}, false
	}
	j.cursor--
	return j.events[j.cursor], true
}

// Skip moves the cursor by count events, clamped to the recorded range.
func (j *Journal) Skip(count int) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cursor = max(0, min(len(j.events), j.cursor+count))
	return j.cursor
}

// Checksum hashes the recorded game content. Event ids and timestamps are
// left out, so two sessions that played out the same way hash equal.
func (j *Journal) Checksum() string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return checksum(j.events)
}

func checksum(events []rules.Event) string {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%s|%s|%s|%s|%d|%s|%s|%s|%s\n",
			e.Type, e.PlayerID, e.TargetID, e.CardID, e.Amount,
			e.Side, e.Role, e.Recipient, strings.Join(e.Hand, ","))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

type journalHeader struct {
	SessionID  string
	Timestamp  time.Time
	Version    int
	EventCount int
	Checksum   string
}

func journalPath(directory, sessionID string) string {
	return filepath.Join(directory, sessionID+".journal")
}

// SaveToFile writes the journal as gzipped gob to <directory>/<session>.journal.
func (j *Journal) SaveToFile(directory string) (string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := journalPath(directory, j.SessionID)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)

	header := journalHeader{
		SessionID:  j.SessionID,
		Timestamp:  time.Now(),
		Version:    journalVersion,
		EventCount: len(j.events),
		Checksum:   checksum(j.events),
	}
	if err := encoder.Encode(&header); err != nil {
		return "", fmt.Errorf("failed to encode header: %w", err)
	}
	for i := range j.events {
		if err := encoder.Encode(&j.events[i]); err != nil {
			return "", fmt.Errorf("failed to encode event %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to flush journal: %w", err)
	}
	return path, nil
}

// LoadJournal reads a journal written by SaveToFile and verifies its checksum.
func LoadJournal(directory, sessionID string) (*Journal, error) {
	file, err := os.Open(journalPath(directory, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)

	var header journalHeader
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", header.Version)
	}

	j := NewJournal(header.SessionID)
	j.events = make([]rules.Event, 0, header.EventCount)
	for i := 0; i < header.EventCount; i++ {
		var evt rules.Event
		if err := decoder.Decode(&evt); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", i, err)
		}
		j.events = append(j.events, evt)
	}

	if got := checksum(j.events); got != header.Checksum {
		return nil, fmt.Errorf("%w: saved=%s loaded=%s", ErrJournalChecksum, header.Checksum, got)
	}
	return j, nil
}

// JournalRecorder attaches a journal to a coordinator and writes it out when
// the game ends or the recorder is closed.
type JournalRecorder struct {
	logger  *zap.Logger
	journal *Journal
	dir     string
	coord   *Coordinator
	handles []int

	mu    sync.Mutex
	saved int // events covered by the last write, -1 before the first
}

// NewJournalRecorder starts recording coord's events into a new journal that
// is saved under dir.
func NewJournalRecorder(coord *Coordinator, sessionID, dir string, logger *zap.Logger) *JournalRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &JournalRecorder{
		logger:  logger,
		journal: NewJournal(sessionID),
		dir:     dir,
		coord:   coord,
		saved:   -1,
	}
	r.handles = append(r.handles,
		coord.Subscribe(r.journal.Record),
		coord.SubscribeTyped(rules.EventGameOver, r.onEnd),
		coord.SubscribeTyped(rules.EventSessionStalled, r.onEnd),
	)
	logger.Info("started session journal", zap.String("session_id", sessionID))
	return r
}

// Journal returns the journal being recorded.
func (r *JournalRecorder) Journal() *Journal {
	return r.journal
}

// onEnd runs after the event itself has been recorded.
func (r *JournalRecorder) onEnd(rules.Event) {
	r.save()
}

// Close stops recording and saves any events recorded since the last write.
func (r *JournalRecorder) Close() {
	for _, handle := range r.handles {
		r.coord.Unsubscribe(handle)
	}
	r.mu.Lock()
	saved := r.saved
	r.mu.Unlock()
	if saved != r.journal.Size() {
		r.save()
	}
}

func (r *JournalRecorder) save() {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, err := r.journal.SaveToFile(r.dir)
	if err != nil {
		r.logger.Error("failed to save session journal",
			zap.String("session_id", r.journal.SessionID),
			zap.Error(err),
		)
		return
	}
	r.saved = r.journal.Size()
	r.logger.Info("saved session journal",
		zap.String("session_id", r.journal.SessionID),
		zap.Int("event_count", r.journal.Size()),
		zap.String("path", path),
	)
}
