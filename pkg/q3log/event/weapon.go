package event

import (
	"strconv"
	"strings"
)

// MeansOfDeath is the weapon or cause code of a Kill line.
type MeansOfDeath int

// Codes as numbered by ioquake3's meansOfDeath_t (team arena build).
const (
	ModUnknown MeansOfDeath = iota
	ModShotgun
	ModGauntlet
	ModMachinegun
	ModGrenade
	ModGrenadeSplash
	ModRocket
	ModRocketSplash
	ModPlasma
	ModPlasmaSplash
	ModRailgun
	ModLightning
	ModBFG
	ModBFGSplash
	ModWater
	ModSlime
	ModLava
	ModCrush
	ModTelefrag
	ModFalling
	ModSuicide
	ModTargetLaser
	ModTriggerHurt
	ModNail
	ModChaingun
	ModProximityMine
	ModKamikaze
	ModJuiced
	ModGrapple
)

var modNames = [...]string{
	"MOD_UNKNOWN",
	"MOD_SHOTGUN",
	"MOD_GAUNTLET",
	"MOD_MACHINEGUN",
	"MOD_GRENADE",
	"MOD_GRENADE_SPLASH",
	"MOD_ROCKET",
	"MOD_ROCKET_SPLASH",
	"MOD_PLASMA",
	"MOD_PLASMA_SPLASH",
	"MOD_RAILGUN",
	"MOD_LIGHTNING",
	"MOD_BFG",
	"MOD_BFG_SPLASH",
	"MOD_WATER",
	"MOD_SLIME",
	"MOD_LAVA",
	"MOD_CRUSH",
	"MOD_TELEFRAG",
	"MOD_FALLING",
	"MOD_SUICIDE",
	"MOD_TARGET_LASER",
	"MOD_TRIGGER_HURT",
	"MOD_NAIL",
	"MOD_CHAINGUN",
	"MOD_PROXIMITY_MINE",
	"MOD_KAMIKAZE",
	"MOD_JUICED",
	"MOD_GRAPPLE",
}

// String returns the server's MOD_* name, or "MOD_<code>" for codes outside
// the known table.
func (m MeansOfDeath) String() string {
	if m >= 0 && int(m) < len(modNames) {
		return modNames[m]
	}
	return "MOD_" + strconv.Itoa(int(m))
}

// MarshalText implements encoding.TextMarshaler so tallies keyed by
// MeansOfDeath serialize with readable keys.
func (m MeansOfDeath) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MeansOfDeath) UnmarshalText(text []byte) error {
	v, ok := ParseMeansOfDeath(string(text))
	if !ok {
		return &EventParsingError{
			EventName: string(TypeKill),
			Cause:     CauseNotAnInteger,
			Field:     "weapon",
			Observed:  string(text),
		}
	}
	*m = v
	return nil
}

// ParseMeansOfDeath accepts a MOD_* name or its "MOD_<code>" fallback form.
func ParseMeansOfDeath(name string) (MeansOfDeath, bool) {
	for i, n := range modNames {
		if n == name {
			return MeansOfDeath(i), true
		}
	}
	if rest, ok := strings.CutPrefix(name, "MOD_"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return MeansOfDeath(n), true
		}
	}
	return 0, false
}
