// Package equipment decides whether the current hand loadout is eligible for
// block classification and which rule governs each hand.
package equipment

// ItemKind classifies what a hand is holding.
type ItemKind int

const (
	None ItemKind = iota // empty hand
	OneHanded
	TwoHanded
	Shield
	Torch
	Spell
	Other
)

var kindNames = map[ItemKind]string{
	None:      "none",
	OneHanded: "one_handed",
	TwoHanded: "two_handed",
	Shield:    "shield",
	Torch:     "torch",
	Spell:     "spell",
	Other:     "other",
}

func (k ItemKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseItemKind maps a name produced by String back to its kind.
func ParseItemKind(s string) (ItemKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return Other, false
}

// IsWeapon reports whether the kind is a melee weapon of either grip.
func (k ItemKind) IsWeapon() bool {
	return k == OneHanded || k == TwoHanded
}

// Rule is the classification rule applied to one hand.
type Rule int

const (
	RuleNone    Rule = iota // hand not classified
	RuleWeapon              // weapon-style features and thresholds
	RuleUnarmed             // unarmed-style features and thresholds
	RuleShield              // defer to the engine's own shield block
	RuleSpell               // always requests stop
)

func (r Rule) String() string {
	switch r {
	case RuleWeapon:
		return "weapon"
	case RuleUnarmed:
		return "unarmed"
	case RuleShield:
		return "shield"
	case RuleSpell:
		return "spell"
	default:
		return "none"
	}
}

// Loadout is what the actor holds this frame.
type Loadout struct {
	MainHand ItemKind
	OffHand  ItemKind
}

// Resolution is the outcome of Resolve. When Applicable is false both rules
// are RuleNone.
type Resolution struct {
	Applicable bool
	Main       Rule
	Off        Rule
}

// Provider exposes the actor's equipped items.
type Provider interface {
	MainHandItem() ItemKind
	OffHandItem() ItemKind
}

// Current reads a Loadout from p.
func Current(p Provider) Loadout {
	return Loadout{MainHand: p.MainHandItem(), OffHand: p.OffHandItem()}
}

// Resolve applies the loadout rules in order, first match wins:
//
//   - both hands empty: unarmed rule on both hands
//   - exactly one hand empty: reject
//   - main hand must hold a one-handed weapon
//   - off hand must hold a weapon, torch, spell, or (when enableShield) a shield
func Resolve(l Loadout, enableShield bool) Resolution {
	if l.MainHand == None && l.OffHand == None {
		return Resolution{Applicable: true, Main: RuleUnarmed, Off: RuleUnarmed}
	}
	if l.MainHand == None || l.OffHand == None {
		return Resolution{}
	}
	if l.MainHand != OneHanded {
		return Resolution{}
	}

	var off Rule
	switch {
	case l.OffHand.IsWeapon(), l.OffHand == Torch:
		off = RuleWeapon
	case l.OffHand == Spell:
		off = RuleSpell
	case l.OffHand == Shield && enableShield:
		off = RuleShield
	default:
		return Resolution{}
	}
	return Resolution{Applicable: true, Main: RuleWeapon, Off: off}
}
