package deck

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// Deck owns the shared draw pile and discard pile for a session.
// Cards are identified by their catalog ID; a card is never created or
// destroyed here, only moved between piles (and out to player hands).
type Deck struct {
	logger  *zap.Logger
	rng     *rand.Rand
	draw    []string
	discard []string
}

// New creates an empty deck. Initialize must be called before the first draw.
func New(rng *rand.Rand, logger *zap.Logger) *Deck {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Deck{
		logger:  logger,
		rng:     rng,
		draw:    make([]string, 0),
		discard: make([]string, 0),
	}
}

// Initialize clears both piles, loads the draw pile with cardIDs and shuffles it.
func (d *Deck) Initialize(cardIDs []string) {
	d.draw = append(d.draw[:0], cardIDs...)
	d.discard = d.discard[:0]
	d.shuffle(d.draw)

	d.logger.Debug("deck initialized", zap.Int("draw_pile", len(d.draw)))
}

// Draw removes and returns the front of the draw pile.
// An empty draw pile is first refilled from the discard pile and reshuffled.
// When both piles are empty it returns ("", false).
func (d *Deck) Draw() (string, bool) {
	if len(d.draw) == 0 {
		d.reshuffle()
	}
	if len(d.draw) == 0 {
		d.logger.Warn("no cards left in draw or discard pile")
		return "", false
	}

	card := d.draw[0]
	d.draw = d.draw[1:]

	d.logger.Debug("card drawn",
		zap.String("card_id", card),
		zap.Int("draw_pile", len(d.draw)),
		zap.Int("discard_pile", len(d.discard)),
	)
	return card, true
}

// Discard puts a card on the discard pile. Callers are trusted: the card is
// not checked against earlier draws.
func (d *Deck) Discard(cardID string) {
	if cardID == "" {
		return
	}
	d.discard = append(d.discard, cardID)
}

// DrawCount returns the number of cards in the draw pile.
func (d *Deck) DrawCount() int {
	return len(d.draw)
}

// DiscardCount returns the number of cards in the discard pile.
func (d *Deck) DiscardCount() int {
	return len(d.discard)
}

// Contents returns copies of the draw pile (in draw order) and the discard pile.
func (d *Deck) Contents() (draw []string, discard []string) {
	return append([]string(nil), d.draw...), append([]string(nil), d.discard...)
}

func (d *Deck) reshuffle() {
	if len(d.discard) == 0 {
		return
	}

	d.draw = append(d.draw, d.discard...)
	d.discard = d.discard[:0]
	d.shuffle(d.draw)

	d.logger.Debug("discard pile reshuffled into draw pile", zap.Int("draw_pile", len(d.draw)))
}

func (d *Deck) shuffle(cards []string) {
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
