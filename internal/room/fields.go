package room

import "fmt"

type RoomArea string
type RoomName string
type RoomDesc string
type RoomContents string
type RoomNote string
type DoorName string

// RoomFields holds every user-visible per-room property.
type RoomFields struct {
	Area         RoomArea     `json:"area,omitempty"`
	Name         RoomName     `json:"name,omitempty"`
	Description  RoomDesc     `json:"description,omitempty"`
	Contents     RoomContents `json:"contents,omitempty"`
	Note         RoomNote     `json:"note,omitempty"`
	MobFlags     MobFlags     `json:"mob_flags,omitempty"`
	LoadFlags    LoadFlags    `json:"load_flags,omitempty"`
	AlignType    Align        `json:"align,omitempty"`
	LightType    Light        `json:"light,omitempty"`
	PortableType Portable     `json:"portable,omitempty"`
	RidableType  Ridable      `json:"ridable,omitempty"`
	SundeathType Sundeath     `json:"sundeath,omitempty"`
	TerrainType  Terrain      `json:"terrain,omitempty"`
}

// ExitFields holds the per-exit properties.
type ExitFields struct {
	DoorName  DoorName  `json:"door_name,omitempty"`
	ExitFlags ExitFlags `json:"exit_flags,omitempty"`
	DoorFlags DoorFlags `json:"door_flags,omitempty"`
}

type RoomFieldEnum uint8

const (
	FieldArea RoomFieldEnum = iota
	FieldName
	FieldDescription
	FieldContents
	FieldNote
	FieldMobFlags
	FieldLoadFlags
	FieldAlignType
	FieldLightType
	FieldPortableType
	FieldRidableType
	FieldSundeathType
	FieldTerrainType
)

type ExitFieldEnum uint8

const (
	FieldDoorName ExitFieldEnum = iota
	FieldExitFlags
	FieldDoorFlags
)

type FieldKind uint8

const (
	KindString FieldKind = iota
	KindFlags
	KindEnum
)

// RoomField is a closed set of typed room field values.
type RoomField interface {
	RoomField() RoomFieldEnum
}

// ExitField is a closed set of typed exit field values.
type ExitField interface {
	ExitField() ExitFieldEnum
}

func (RoomArea) RoomField() RoomFieldEnum     { return FieldArea }
func (RoomName) RoomField() RoomFieldEnum     { return FieldName }
func (RoomDesc) RoomField() RoomFieldEnum     { return FieldDescription }
func (RoomContents) RoomField() RoomFieldEnum { return FieldContents }
func (RoomNote) RoomField() RoomFieldEnum     { return FieldNote }
func (MobFlags) RoomField() RoomFieldEnum     { return FieldMobFlags }
func (LoadFlags) RoomField() RoomFieldEnum    { return FieldLoadFlags }
func (Align) RoomField() RoomFieldEnum        { return FieldAlignType }
func (Light) RoomField() RoomFieldEnum        { return FieldLightType }
func (Portable) RoomField() RoomFieldEnum     { return FieldPortableType }
func (Ridable) RoomField() RoomFieldEnum      { return FieldRidableType }
func (Sundeath) RoomField() RoomFieldEnum     { return FieldSundeathType }
func (Terrain) RoomField() RoomFieldEnum      { return FieldTerrainType }

func (DoorName) ExitField() ExitFieldEnum  { return FieldDoorName }
func (ExitFlags) ExitField() ExitFieldEnum { return FieldExitFlags }
func (DoorFlags) ExitField() ExitFieldEnum { return FieldDoorFlags }

// RoomFieldDescriptor describes one room field for the generic routines that
// read, write, compare and print fields.
type RoomFieldDescriptor struct {
	Field RoomFieldEnum
	Name  string
	Kind  FieldKind
	// Mesh reports whether a change to the field affects map rendering.
	Mesh bool
	Get  func(*RoomFields) RoomField
	Set  func(*RoomFields, RoomField)
	Zero RoomField
}

// RoomFieldTable lists every room field in canonical order.
var RoomFieldTable = []RoomFieldDescriptor{
	{FieldArea, "Area", KindString, false,
		func(f *RoomFields) RoomField { return f.Area },
		func(f *RoomFields, v RoomField) { f.Area = v.(RoomArea) }, RoomArea("")},
	{FieldName, "Name", KindString, false,
		func(f *RoomFields) RoomField { return f.Name },
		func(f *RoomFields, v RoomField) { f.Name = v.(RoomName) }, RoomName("")},
	{FieldDescription, "Description", KindString, false,
		func(f *RoomFields) RoomField { return f.Description },
		func(f *RoomFields, v RoomField) { f.Description = v.(RoomDesc) }, RoomDesc("")},
	{FieldContents, "Contents", KindString, false,
		func(f *RoomFields) RoomField { return f.Contents },
		func(f *RoomFields, v RoomField) { f.Contents = v.(RoomContents) }, RoomContents("")},
	{FieldNote, "Note", KindString, false,
		func(f *RoomFields) RoomField { return f.Note },
		func(f *RoomFields, v RoomField) { f.Note = v.(RoomNote) }, RoomNote("")},
	{FieldMobFlags, "MobFlags", KindFlags, true,
		func(f *RoomFields) RoomField { return f.MobFlags },
		func(f *RoomFields, v RoomField) { f.MobFlags = v.(MobFlags) }, MobFlags(0)},
	{FieldLoadFlags, "LoadFlags", KindFlags, true,
		func(f *RoomFields) RoomField { return f.LoadFlags },
		func(f *RoomFields, v RoomField) { f.LoadFlags = v.(LoadFlags) }, LoadFlags(0)},
	{FieldAlignType, "AlignType", KindEnum, true,
		func(f *RoomFields) RoomField { return f.AlignType },
		func(f *RoomFields, v RoomField) { f.AlignType = v.(Align) }, AlignUndefined},
	{FieldLightType, "LightType", KindEnum, true,
		func(f *RoomFields) RoomField { return f.LightType },
		func(f *RoomFields, v RoomField) { f.LightType = v.(Light) }, LightUndefined},
	{FieldPortableType, "PortableType", KindEnum, true,
		func(f *RoomFields) RoomField { return f.PortableType },
		func(f *RoomFields, v RoomField) { f.PortableType = v.(Portable) }, PortableUndefined},
	{FieldRidableType, "RidableType", KindEnum, true,
		func(f *RoomFields) RoomField { return f.RidableType },
		func(f *RoomFields, v RoomField) { f.RidableType = v.(Ridable) }, RidableUndefined},
	{FieldSundeathType, "SundeathType", KindEnum, true,
		func(f *RoomFields) RoomField { return f.SundeathType },
		func(f *RoomFields, v RoomField) { f.SundeathType = v.(Sundeath) }, SundeathUndefined},
	{FieldTerrainType, "TerrainType", KindEnum, true,
		func(f *RoomFields) RoomField { return f.TerrainType },
		func(f *RoomFields, v RoomField) { f.TerrainType = v.(Terrain) }, TerrainUndefined},
}

// Descriptor returns the table entry for e.
func (e RoomFieldEnum) Descriptor() *RoomFieldDescriptor {
	return &RoomFieldTable[e]
}

func (e RoomFieldEnum) String() string {
	if int(e) < len(RoomFieldTable) {
		return RoomFieldTable[e].Name
	}
	return "Invalid"
}

// ParseRoomFieldEnum accepts the CamelCase field name.
func ParseRoomFieldEnum(s string) (RoomFieldEnum, bool) {
	for _, d := range RoomFieldTable {
		if d.Name == s {
			return d.Field, true
		}
	}
	return 0, false
}

func (f *RoomFields) Get(e RoomFieldEnum) RoomField {
	return RoomFieldTable[e].Get(f)
}

// Set stores v in the field matching its type.
func (f *RoomFields) Set(v RoomField) {
	RoomFieldTable[v.RoomField()].Set(f, v)
}

type ExitFieldDescriptor struct {
	Field ExitFieldEnum
	Name  string
	Kind  FieldKind
	Get   func(*ExitFields) ExitField
	Set   func(*ExitFields, ExitField)
	Zero  ExitField
}

// ExitFieldTable lists every exit field in canonical order.
var ExitFieldTable = []ExitFieldDescriptor{
	{FieldDoorName, "DoorName", KindString,
		func(f *ExitFields) ExitField { return f.DoorName },
		func(f *ExitFields, v ExitField) { f.DoorName = v.(DoorName) }, DoorName("")},
	{FieldExitFlags, "ExitFlags", KindFlags,
		func(f *ExitFields) ExitField { return f.ExitFlags },
		func(f *ExitFields, v ExitField) { f.ExitFlags = v.(ExitFlags) }, ExitFlags(0)},
	{FieldDoorFlags, "DoorFlags", KindFlags,
		func(f *ExitFields) ExitField { return f.DoorFlags },
		func(f *ExitFields, v ExitField) { f.DoorFlags = v.(DoorFlags) }, DoorFlags(0)},
}

func (e ExitFieldEnum) String() string {
	if int(e) < len(ExitFieldTable) {
		return ExitFieldTable[e].Name
	}
	return "Invalid"
}

func (f *ExitFields) Get(e ExitFieldEnum) ExitField {
	return ExitFieldTable[e].Get(f)
}

func (f *ExitFields) Set(v ExitField) {
	ExitFieldTable[v.ExitField()].Set(f, v)
}

// FieldString renders a field value for reports: strings are returned raw,
// flags as space separated names and enums by name.
func FieldString(v any) string {
	switch t := v.(type) {
	case RoomArea:
		return string(t)
	case RoomName:
		return string(t)
	case RoomDesc:
		return string(t)
	case RoomContents:
		return string(t)
	case RoomNote:
		return string(t)
	case DoorName:
		return string(t)
	case interface{ String() string }:
		return t.String()
	default:
		return ""
	}
}

// ParseRoomField converts the text form produced by FieldString back into a
// typed value for field e.
func ParseRoomField(e RoomFieldEnum, s string) (RoomField, error) {
	switch e {
	case FieldArea:
		return RoomArea(s), nil
	case FieldName:
		return RoomName(s), nil
	case FieldDescription:
		return RoomDesc(s), nil
	case FieldContents:
		return RoomContents(s), nil
	case FieldNote:
		return RoomNote(s), nil
	case FieldMobFlags:
		return ParseMobFlags(s)
	case FieldLoadFlags:
		return ParseLoadFlags(s)
	case FieldAlignType:
		return ParseAlign(s)
	case FieldLightType:
		return ParseLight(s)
	case FieldPortableType:
		return ParsePortable(s)
	case FieldRidableType:
		return ParseRidable(s)
	case FieldSundeathType:
		return ParseSundeath(s)
	case FieldTerrainType:
		return ParseTerrain(s)
	}
	return nil, fmt.Errorf("invalid room field %d", uint8(e))
}

// ParseExitFieldEnum accepts the CamelCase field name.
func ParseExitFieldEnum(s string) (ExitFieldEnum, bool) {
	for _, d := range ExitFieldTable {
		if d.Name == s {
			return d.Field, true
		}
	}
	return 0, false
}

func ParseExitField(e ExitFieldEnum, s string) (ExitField, error) {
	switch e {
	case FieldDoorName:
		return DoorName(s), nil
	case FieldExitFlags:
		return ParseExitFlags(s)
	case FieldDoorFlags:
		return ParseDoorFlags(s)
	}
	return nil, fmt.Errorf("invalid exit field %d", uint8(e))
}
