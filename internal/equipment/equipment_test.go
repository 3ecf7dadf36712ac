package equipment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		loadout      Loadout
		enableShield bool
		want         Resolution
	}{
		{"unarmed", Loadout{None, None}, true, Resolution{true, RuleUnarmed, RuleUnarmed}},
		{"main empty", Loadout{None, OneHanded}, true, Resolution{}},
		{"off empty", Loadout{OneHanded, None}, true, Resolution{}},
		{"dual wield", Loadout{OneHanded, OneHanded}, true, Resolution{true, RuleWeapon, RuleWeapon}},
		{"weapon and torch", Loadout{OneHanded, Torch}, true, Resolution{true, RuleWeapon, RuleWeapon}},
		{"weapon and spell", Loadout{OneHanded, Spell}, true, Resolution{true, RuleWeapon, RuleSpell}},
		{"weapon and shield", Loadout{OneHanded, Shield}, true, Resolution{true, RuleWeapon, RuleShield}},
		{"shield disabled", Loadout{OneHanded, Shield}, false, Resolution{}},
		{"two handed main", Loadout{TwoHanded, OneHanded}, true, Resolution{}},
		{"spell in main", Loadout{Spell, OneHanded}, true, Resolution{}},
		{"other off hand", Loadout{OneHanded, Other}, true, Resolution{}},
		{"torch in main", Loadout{Torch, OneHanded}, true, Resolution{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Resolve(tt.loadout, tt.enableShield))
		})
	}
}

func TestParseItemKind(t *testing.T) {
	t.Parallel()
	for k := None; k <= Other; k++ {
		got, ok := ParseItemKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	got, ok := ParseItemKind("bow")
	assert.False(t, ok)
	assert.Equal(t, Other, got)
}

type fixedProvider Loadout

func (f fixedProvider) MainHandItem() ItemKind { return f.MainHand }
func (f fixedProvider) OffHandItem() ItemKind  { return f.OffHand }

func TestCurrent(t *testing.T) {
	t.Parallel()
	l := Current(fixedProvider{MainHand: OneHanded, OffHand: Shield})
	assert.Equal(t, Loadout{OneHanded, Shield}, l)
}
