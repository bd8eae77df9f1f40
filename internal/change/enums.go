package change

import "fmt"

type ChangeType uint8

const (
	ChangeAdd ChangeType = iota
	ChangeRemove
)

type FlagChange uint8

const (
	FlagSet FlagChange = iota
	FlagAdd
	FlagRemove
)

type UpdateType uint8

const (
	UpdateNew UpdateType = iota
	UpdateForce
	UpdateUpdate
)

type Ways uint8

const (
	OneWay Ways = iota
	TwoWay
)

// FlagModifyMode selects how a field value is combined with the existing one.
type FlagModifyMode uint8

const (
	ModeAssign FlagModifyMode = iota
	ModeInsert
	ModeRemove
	ModeClear
)

var (
	changeTypeNames = []string{"Add", "Remove"}
	flagChangeNames = []string{"Set", "Add", "Remove"}
	updateTypeNames = []string{"New", "Force", "Update"}
	waysNames       = []string{"OneWay", "TwoWay"}
	modeNames       = []string{"ASSIGN", "INSERT", "REMOVE", "CLEAR"}
)

func name[T ~uint8](v T, names []string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("invalid(%d)", uint8(v))
}

func parse[T ~uint8](b []byte, names []string) (T, error) {
	for i, n := range names {
		if n == string(b) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", string(b))
}

func marshal[T ~uint8](v T, names []string) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, fmt.Errorf("invalid value %d", uint8(v))
	}
	return []byte(names[v]), nil
}

func (c ChangeType) String() string     { return name(c, changeTypeNames) }
func (f FlagChange) String() string     { return name(f, flagChangeNames) }
func (u UpdateType) String() string     { return name(u, updateTypeNames) }
func (w Ways) String() string           { return name(w, waysNames) }
func (m FlagModifyMode) String() string { return name(m, modeNames) }

func (c ChangeType) MarshalText() ([]byte, error)     { return marshal(c, changeTypeNames) }
func (f FlagChange) MarshalText() ([]byte, error)     { return marshal(f, flagChangeNames) }
func (u UpdateType) MarshalText() ([]byte, error)     { return marshal(u, updateTypeNames) }
func (w Ways) MarshalText() ([]byte, error)           { return marshal(w, waysNames) }
func (m FlagModifyMode) MarshalText() ([]byte, error) { return marshal(m, modeNames) }

func (c *ChangeType) UnmarshalText(b []byte) (err error) {
	*c, err = parse[ChangeType](b, changeTypeNames)
	return err
}

func (f *FlagChange) UnmarshalText(b []byte) (err error) {
	*f, err = parse[FlagChange](b, flagChangeNames)
	return err
}

func (u *UpdateType) UnmarshalText(b []byte) (err error) {
	*u, err = parse[UpdateType](b, updateTypeNames)
	return err
}

func (w *Ways) UnmarshalText(b []byte) (err error) {
	*w, err = parse[Ways](b, waysNames)
	return err
}

func (m *FlagModifyMode) UnmarshalText(b []byte) (err error) {
	*m, err = parse[FlagModifyMode](b, modeNames)
	return err
}
