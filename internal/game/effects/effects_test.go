package effects

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/soulbound/soulbound-server/internal/game/catalog"
)

type fakeRoster struct {
	order []string
	alive map[string]bool
}

func (f fakeRoster) PlayerAlive(id string) (bool, bool) {
	alive, ok := f.alive[id]
	return alive, ok
}

func (f fakeRoster) AlivePlayerIDs() []string {
	var ids []string
	for _, id := range f.order {
		if f.alive[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

type recorder struct {
	calls []string
}

func (r *recorder) Damage(id string, n int)   { r.calls = append(r.calls, fmt.Sprintf("damage %s %d", id, n)) }
func (r *recorder) Heal(id string, n int)     { r.calls = append(r.calls, fmt.Sprintf("heal %s %d", id, n)) }
func (r *recorder) AddArmor(id string, n int) { r.calls = append(r.calls, fmt.Sprintf("armor %s %d", id, n)) }
func (r *recorder) Draw(id string, n int)     { r.calls = append(r.calls, fmt.Sprintf("draw %s %d", id, n)) }
func (r *recorder) AddMana(id string, n int)  { r.calls = append(r.calls, fmt.Sprintf("mana %s %d", id, n)) }

func newRoster() fakeRoster {
	return fakeRoster{
		order: []string{"p1", "p2", "p3"},
		alive: map[string]bool{"p1": true, "p2": true, "p3": false},
	}
}

func TestResolveTargets(t *testing.T) {
	roster := newRoster()

	tests := []struct {
		name    string
		rule    catalog.TargetRule
		target  string
		want    []string
		wantErr bool
	}{
		{name: "self ignores reference", rule: catalog.TargetSelf, target: "p2", want: []string{"p1"}},
		{name: "other player", rule: catalog.TargetOtherPlayer, target: "p2", want: []string{"p2"}},
		{name: "other player rejects caster", rule: catalog.TargetOtherPlayer, target: "p1", wantErr: true},
		{name: "other player rejects dead", rule: catalog.TargetOtherPlayer, target: "p3", wantErr: true},
		{name: "other player rejects unknown", rule: catalog.TargetOtherPlayer, target: "ghost", wantErr: true},
		{name: "other player requires reference", rule: catalog.TargetOtherPlayer, target: "", wantErr: true},
		{name: "any player accepts caster", rule: catalog.TargetAnyPlayer, target: "p1", want: []string{"p1"}},
		{name: "any player rejects dead", rule: catalog.TargetAnyPlayer, target: "p3", wantErr: true},
		{name: "all players are the alive ones", rule: catalog.TargetAllPlayers, want: []string{"p1", "p2"}},
		{name: "no target", rule: catalog.TargetNone, target: "p2", want: nil},
		{name: "unknown rule", rule: catalog.TargetRule("everyone_else"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTargets(tt.rule, "p1", tt.target, roster)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTarget)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyPerTargetEffects(t *testing.T) {
	resolver := NewResolver(zap.NewNop())

	rec := &recorder{}
	resolver.Apply(rec, catalog.Card{ID: "wail", Effect: catalog.EffectDamage, Value: 1}, "p1", []string{"p1", "p2"})
	assert.Equal(t, []string{"damage p1 1", "damage p2 1"}, rec.calls)

	rec = &recorder{}
	resolver.Apply(rec, catalog.Card{ID: "mend", Effect: catalog.EffectHeal, Value: 2}, "p1", []string{"p2"})
	assert.Equal(t, []string{"heal p2 2"}, rec.calls)

	rec = &recorder{}
	resolver.Apply(rec, catalog.Card{ID: "ward", Effect: catalog.EffectArmor, Value: 2}, "p1", []string{"p1"})
	assert.Equal(t, []string{"armor p1 2"}, rec.calls)
}

func TestApplyUntargetedPerTargetEffectsDoNothing(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	resolver := NewResolver(zap.New(core))

	for _, effect := range []catalog.EffectKind{catalog.EffectDamage, catalog.EffectHeal, catalog.EffectArmor} {
		rec := &recorder{}
		resolver.Apply(rec, catalog.Card{ID: "blank", Effect: effect, Value: 3}, "p1", nil)
		assert.Empty(t, rec.calls, "effect %s", effect)
	}
	assert.Equal(t, 3, logs.FilterMessage("untargeted card effect skipped").Len())
}

func TestApplyCasterCentricEffects(t *testing.T) {
	resolver := NewResolver(nil)

	rec := &recorder{}
	resolver.Apply(rec, catalog.Card{ID: "insight", Effect: catalog.EffectDraw, Value: 2}, "p1", []string{"p2", "p3"})
	assert.Equal(t, []string{"draw p1 2"}, rec.calls)

	rec = &recorder{}
	resolver.Apply(rec, catalog.Card{ID: "focus", Effect: catalog.EffectManaUp, Value: 1}, "p1", nil)
	assert.Equal(t, []string{"mana p1 1"}, rec.calls)
}

func TestApplyUnknownEffectIsLoggedNoOp(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	resolver := NewResolver(zap.New(core))

	rec := &recorder{}
	resolver.Apply(rec, catalog.Card{ID: "future", Effect: catalog.EffectKind("steal")}, "p1", []string{"p2"})

	assert.Empty(t, rec.calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "steal", logs.All()[0].ContextMap()["effect"])
}
