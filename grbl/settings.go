package grbl

// Settings is a mapping from a GRBL setting identifier (the numeric part of
// "$n") to its scalar value. Only $130/$131/$132 (max travel per axis) carry
// semantic meaning to this core; every other identifier is accepted and
// echoed back verbatim on "$$", matching a real GRBL controller's
// permissiveness toward settings it does not act on.
//
// Iteration order is irrelevant to correctness but is kept stable within a
// run by recording insertion order alongside the map, the same shape the
// original Python emulator gets "for free" from CPython's ordered dicts.
type Settings struct {
	order  []int
	values map[int]float64
}

// MaxTravelSetting is the setting identifier for the max-travel of each axis,
// indexed the same way as Position axis letters X=0, Y=1, Z=2.
var MaxTravelSetting = [3]int{130, 131, 132}

// NewSettings returns the GRBL-standard settings table seeded with the
// values carried over from the original emulator (original_source/grbl_emu.py),
// not just the three travel limits this core acts on. The table is trimmed
// to 26 entries, spanning the same category ranges (stepper/motor, homing,
// acceleration, and the three travel limits) the original's fuller table
// uses.
func NewSettings() *Settings {
	s := &Settings{values: make(map[int]float64)}
	defaults := []struct {
		id  int
		val float64
	}{
		{0, 10}, {1, 25}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0},
		{10, 1}, {11, 0.010}, {12, 0.002}, {13, 0},
		{20, 0}, {21, 0}, {22, 1}, {23, 0}, {24, 25.0}, {25, 500.0}, {26, 250}, {27, 1.0},
		{30, 1000}, {31, 0}, {32, 0},
		{100, 800.0},
		{130, 300.0}, {131, 180.0}, {132, 45.0},
	}
	for _, d := range defaults {
		s.Set(d.id, d.val)
	}
	return s
}

// Set assigns the value for a setting identifier, appending it to the
// stable iteration order the first time it is seen.
func (s *Settings) Set(id int, v float64) {
	if _, ok := s.values[id]; !ok {
		s.order = append(s.order, id)
	}
	s.values[id] = v
}

// Get returns the value for a setting identifier and whether it is present.
func (s *Settings) Get(id int) (float64, bool) {
	v, ok := s.values[id]
	return v, ok
}

// MaxTravel returns the (x, y, z) max-travel triple from $130/$131/$132.
func (s *Settings) MaxTravel() Position {
	x, _ := s.Get(MaxTravelSetting[0])
	y, _ := s.Get(MaxTravelSetting[1])
	z, _ := s.Get(MaxTravelSetting[2])
	return Position{X: x, Y: y, Z: z}
}

// Each calls fn once per setting in stable order, for serialization by the
// response emitter's "$$" dump.
func (s *Settings) Each(fn func(id int, v float64)) {
	for _, id := range s.order {
		fn(id, s.values[id])
	}
}

// Len reports how many settings are present.
func (s *Settings) Len() int {
	return len(s.order)
}
