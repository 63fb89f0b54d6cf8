package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/viper"
)

// Record is the serialized form of a card in a catalog file or table.
type Record struct {
	ID       string `mapstructure:"id" db:"id"`
	Name     string `mapstructure:"name" db:"name"`
	ManaCost int    `mapstructure:"mana_cost" db:"mana_cost"`
	Effect   string `mapstructure:"effect" db:"effect"`
	Value    int    `mapstructure:"value" db:"value"`
	Target   string `mapstructure:"target" db:"target"`
}

// Card converts a record into a definition. Unknown effect kinds are kept
// as-is so newer catalogs load on older servers; unknown target rules fail.
func (r Record) Card() (Card, error) {
	target, err := ParseTargetRule(r.Target)
	if err != nil {
		return Card{}, fmt.Errorf("card %s: %w", r.ID, err)
	}
	return Card{
		ID:       strings.TrimSpace(r.ID),
		Name:     strings.TrimSpace(r.Name),
		ManaCost: r.ManaCost,
		Effect:   EffectKind(strings.ToLower(strings.TrimSpace(r.Effect))),
		Value:    r.Value,
		Target:   target,
	}, nil
}

// FromRecords builds a catalog from serialized records.
func FromRecords(records []Record) (*Catalog, error) {
	cards := make([]Card, 0, len(records))
	for _, r := range records {
		card, err := r.Card()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return New(cards)
}

// LoadFile reads a catalog file (YAML, JSON or TOML) holding a top-level
// "cards" list.
func LoadFile(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read card catalog: %w", err)
	}

	var records []Record
	if err := v.UnmarshalKey("cards", &records); err != nil {
		return nil, fmt.Errorf("failed to decode card catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("card catalog %s has no cards", path)
	}

	return FromRecords(records)
}

// Querier is the subset of pgxpool.Pool used by LoadPostgres.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectCardsSQL = `SELECT id, name, mana_cost, effect, value, target FROM cards ORDER BY id`

// LoadPostgres reads the catalog from the cards table written by the importer.
func LoadPostgres(ctx context.Context, db Querier) (*Catalog, error) {
	rows, err := db.Query(ctx, selectCardsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[Record])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cards: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cards table is empty")
	}

	return FromRecords(records)
}
