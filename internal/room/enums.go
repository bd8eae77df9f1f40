package room

import "fmt"

type Terrain uint8

const (
	TerrainUndefined Terrain = iota
	TerrainIndoors
	TerrainCity
	TerrainField
	TerrainForest
	TerrainHills
	TerrainMountains
	TerrainShallow
	TerrainWater
	TerrainRapids
	TerrainUnderwater
	TerrainRoad
	TerrainBrush
	TerrainTunnel
	TerrainCavern
)

var terrainNames = []string{
	"UNDEFINED", "INDOORS", "CITY", "FIELD", "FOREST", "HILLS", "MOUNTAINS", "SHALLOW",
	"WATER", "RAPIDS", "UNDERWATER", "ROAD", "BRUSH", "TUNNEL", "CAVERN",
}

type Align uint8

const (
	AlignUndefined Align = iota
	AlignGood
	AlignNeutral
	AlignEvil
)

var alignNames = []string{"UNDEFINED", "GOOD", "NEUTRAL", "EVIL"}

type Light uint8

const (
	LightUndefined Light = iota
	LightDark
	LightLit
)

var lightNames = []string{"UNDEFINED", "DARK", "LIT"}

type Portable uint8

const (
	PortableUndefined Portable = iota
	PortablePortable
	PortableNotPortable
)

var portableNames = []string{"UNDEFINED", "PORTABLE", "NOT_PORTABLE"}

type Ridable uint8

const (
	RidableUndefined Ridable = iota
	RidableRidable
	RidableNotRidable
)

var ridableNames = []string{"UNDEFINED", "RIDABLE", "NOT_RIDABLE"}

type Sundeath uint8

const (
	SundeathUndefined Sundeath = iota
	SundeathSundeath
	SundeathNoSundeath
)

var sundeathNames = []string{"UNDEFINED", "SUNDEATH", "NO_SUNDEATH"}

type Status uint8

const (
	StatusTemporary Status = iota
	StatusPermanent
)

func (s Status) String() string {
	if s == StatusPermanent {
		return "PERMANENT"
	}
	return "TEMPORARY"
}

func enumName[T ~uint8](v T, names []string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("INVALID(%d)", uint8(v))
}

func (t Terrain) String() string  { return enumName(t, terrainNames) }
func (a Align) String() string    { return enumName(a, alignNames) }
func (l Light) String() string    { return enumName(l, lightNames) }
func (p Portable) String() string { return enumName(p, portableNames) }
func (r Ridable) String() string  { return enumName(r, ridableNames) }
func (s Sundeath) String() string { return enumName(s, sundeathNames) }

func (t Terrain) IsValid() bool  { return int(t) < len(terrainNames) }
func (a Align) IsValid() bool    { return int(a) < len(alignNames) }
func (l Light) IsValid() bool    { return int(l) < len(lightNames) }
func (p Portable) IsValid() bool { return int(p) < len(portableNames) }
func (r Ridable) IsValid() bool  { return int(r) < len(ridableNames) }
func (s Sundeath) IsValid() bool { return int(s) < len(sundeathNames) }

// Sanitize maps out of range values to UNDEFINED.
func (t Terrain) Sanitize() Terrain {
	if !t.IsValid() {
		return TerrainUndefined
	}
	return t
}

func (a Align) Sanitize() Align {
	if !a.IsValid() {
		return AlignUndefined
	}
	return a
}

func (l Light) Sanitize() Light {
	if !l.IsValid() {
		return LightUndefined
	}
	return l
}

func (p Portable) Sanitize() Portable {
	if !p.IsValid() {
		return PortableUndefined
	}
	return p
}

func (r Ridable) Sanitize() Ridable {
	if !r.IsValid() {
		return RidableUndefined
	}
	return r
}

func (s Sundeath) Sanitize() Sundeath {
	if !s.IsValid() {
		return SundeathUndefined
	}
	return s
}

// parseEnum looks a name up in names, case sensitively.
func parseEnum[T ~uint8](s string, names []string) (T, error) {
	for i, n := range names {
		if n == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}

func ParseTerrain(s string) (Terrain, error)   { return parseEnum[Terrain](s, terrainNames) }
func ParseAlign(s string) (Align, error)       { return parseEnum[Align](s, alignNames) }
func ParseLight(s string) (Light, error)       { return parseEnum[Light](s, lightNames) }
func ParsePortable(s string) (Portable, error) { return parseEnum[Portable](s, portableNames) }
func ParseRidable(s string) (Ridable, error)   { return parseEnum[Ridable](s, ridableNames) }
func ParseSundeath(s string) (Sundeath, error) { return parseEnum[Sundeath](s, sundeathNames) }
