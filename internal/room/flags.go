package room

import (
	"fmt"
	"math/bits"
	"strings"
)

type ExitFlags uint16

const (
	ExitFlagExit ExitFlags = 1 << iota
	ExitFlagDoor
	ExitFlagRoad
	ExitFlagClimb
	ExitFlagRandom
	ExitFlagSpecial
	ExitFlagNoMatch
	ExitFlagFlow
	ExitFlagNoFlee
	ExitFlagDamage
	ExitFlagFall
	ExitFlagGuarded
	ExitFlagUnmapped
)

var exitFlagNames = []string{
	"EXIT", "DOOR", "ROAD", "CLIMB", "RANDOM", "SPECIAL", "NO_MATCH", "FLOW",
	"NO_FLEE", "DAMAGE", "FALL", "GUARDED", "UNMAPPED",
}

type DoorFlags uint16

const (
	DoorFlagHidden DoorFlags = 1 << iota
	DoorFlagNeedKey
	DoorFlagNoBlock
	DoorFlagNoBreak
	DoorFlagNoPick
	DoorFlagDelayed
	DoorFlagCallable
	DoorFlagKnockable
	DoorFlagMagic
	DoorFlagAction
)

var doorFlagNames = []string{
	"HIDDEN", "NEED_KEY", "NO_BLOCK", "NO_BREAK", "NO_PICK", "DELAYED",
	"CALLABLE", "KNOCKABLE", "MAGIC", "ACTION",
}

type MobFlags uint32

const (
	MobFlagRent MobFlags = 1 << iota
	MobFlagShop
	MobFlagWeaponShop
	MobFlagArmourShop
	MobFlagFoodShop
	MobFlagPetShop
	MobFlagGuild
	MobFlagScoutGuild
	MobFlagMageGuild
	MobFlagClericGuild
	MobFlagWarriorGuild
	MobFlagRangerGuild
	MobFlagAggressiveMob
	MobFlagQuestMob
	MobFlagPassiveMob
	MobFlagEliteMob
	MobFlagSuperMob
	MobFlagMilkable
	MobFlagRattlesnake
)

var mobFlagNames = []string{
	"RENT", "SHOP", "WEAPON_SHOP", "ARMOUR_SHOP", "FOOD_SHOP", "PET_SHOP", "GUILD",
	"SCOUT_GUILD", "MAGE_GUILD", "CLERIC_GUILD", "WARRIOR_GUILD", "RANGER_GUILD",
	"AGGRESSIVE_MOB", "QUEST_MOB", "PASSIVE_MOB", "ELITE_MOB", "SUPER_MOB", "MILKABLE",
	"RATTLESNAKE",
}

type LoadFlags uint32

const (
	LoadFlagTreasure LoadFlags = 1 << iota
	LoadFlagArmour
	LoadFlagWeapon
	LoadFlagWater
	LoadFlagFood
	LoadFlagHerb
	LoadFlagKey
	LoadFlagMule
	LoadFlagHorse
	LoadFlagPackHorse
	LoadFlagTrainedHorse
	LoadFlagRohirrim
	LoadFlagWarg
	LoadFlagBoat
	LoadFlagAttention
	LoadFlagTower
	LoadFlagClock
	LoadFlagMail
	LoadFlagStable
	LoadFlagWhiteWord
	LoadFlagDarkWord
	LoadFlagEquipment
	LoadFlagCoach
	LoadFlagFerry
	LoadFlagDeathtrap
)

var loadFlagNames = []string{
	"TREASURE", "ARMOUR", "WEAPON", "WATER", "FOOD", "HERB", "KEY", "MULE", "HORSE",
	"PACK_HORSE", "TRAINED_HORSE", "ROHIRRIM", "WARG", "BOAT", "ATTENTION", "TOWER",
	"CLOCK", "MAIL", "STABLE", "WHITE_WORD", "DARK_WORD", "EQUIPMENT", "COACH", "FERRY",
	"DEATHTRAP",
}

type flagBits interface {
	~uint16 | ~uint32
}

func flagMask[T flagBits](names []string) T {
	return T(uint64(1)<<len(names) - 1)
}

func flagStrings[T flagBits](v T, names []string) []string {
	var out []string
	for i, n := range names {
		if uint64(v)&(uint64(1)<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

func parseFlags[T flagBits](s string, names []string) (T, error) {
	var out T
	for _, word := range strings.Fields(s) {
		found := false
		for i, n := range names {
			if strings.EqualFold(n, word) {
				out |= T(uint64(1) << i)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown flag %q", word)
		}
	}
	return out, nil
}

func (f ExitFlags) Contains(o ExitFlags) bool { return f&o == o && o != 0 }
func (f DoorFlags) Contains(o DoorFlags) bool { return f&o == o && o != 0 }
func (f MobFlags) Contains(o MobFlags) bool   { return f&o == o && o != 0 }
func (f LoadFlags) Contains(o LoadFlags) bool { return f&o == o && o != 0 }

func (f ExitFlags) Count() int { return bits.OnesCount16(uint16(f)) }
func (f DoorFlags) Count() int { return bits.OnesCount16(uint16(f)) }
func (f MobFlags) Count() int  { return bits.OnesCount32(uint32(f)) }
func (f LoadFlags) Count() int { return bits.OnesCount32(uint32(f)) }

func (f ExitFlags) Names() []string { return flagStrings(f, exitFlagNames) }
func (f DoorFlags) Names() []string { return flagStrings(f, doorFlagNames) }
func (f MobFlags) Names() []string  { return flagStrings(f, mobFlagNames) }
func (f LoadFlags) Names() []string { return flagStrings(f, loadFlagNames) }

func (f ExitFlags) String() string { return strings.Join(f.Names(), " ") }
func (f DoorFlags) String() string { return strings.Join(f.Names(), " ") }
func (f MobFlags) String() string  { return strings.Join(f.Names(), " ") }
func (f LoadFlags) String() string { return strings.Join(f.Names(), " ") }

// Sanitize drops any bits outside the defined flag range.
func (f ExitFlags) Sanitize() ExitFlags { return f & flagMask[ExitFlags](exitFlagNames) }
func (f DoorFlags) Sanitize() DoorFlags { return f & flagMask[DoorFlags](doorFlagNames) }
func (f MobFlags) Sanitize() MobFlags   { return f & flagMask[MobFlags](mobFlagNames) }
func (f LoadFlags) Sanitize() LoadFlags { return f & flagMask[LoadFlags](loadFlagNames) }

func (f ExitFlags) IsValid() bool { return f == f.Sanitize() }
func (f DoorFlags) IsValid() bool { return f == f.Sanitize() }
func (f MobFlags) IsValid() bool  { return f == f.Sanitize() }
func (f LoadFlags) IsValid() bool { return f == f.Sanitize() }

func ParseExitFlags(s string) (ExitFlags, error) { return parseFlags[ExitFlags](s, exitFlagNames) }
func ParseDoorFlags(s string) (DoorFlags, error) { return parseFlags[DoorFlags](s, doorFlagNames) }
func ParseMobFlags(s string) (MobFlags, error)   { return parseFlags[MobFlags](s, mobFlagNames) }
func ParseLoadFlags(s string) (LoadFlags, error) { return parseFlags[LoadFlags](s, loadFlagNames) }

func (f ExitFlags) IsExit() bool     { return f&ExitFlagExit != 0 }
func (f ExitFlags) IsDoor() bool     { return f&ExitFlagDoor != 0 }
func (f ExitFlags) IsNoMatch() bool  { return f&ExitFlagNoMatch != 0 }
func (f ExitFlags) IsRandom() bool   { return f&ExitFlagRandom != 0 }
func (f ExitFlags) IsUnmapped() bool { return f&ExitFlagUnmapped != 0 }
func (f ExitFlags) IsClimb() bool    { return f&ExitFlagClimb != 0 }
func (f ExitFlags) IsRoad() bool     { return f&ExitFlagRoad != 0 }
func (f DoorFlags) IsHidden() bool   { return f&DoorFlagHidden != 0 }
