package refine

// mapTable is a minimal LevelSource for tests; key -1 is the fallback.
type mapTable map[int]LevelEntry

func (t mapTable) EntryFor(level int) LevelEntry {
	if e, ok := t[level]; ok {
		return e
	}
	return t[-1]
}

type flatPrices struct {
	protection int64
	materials  map[EquipmentCategory]map[MaterialType]int64
}

func (p flatPrices) ProtectionUnitPrice() int64 { return p.protection }

func (p flatPrices) MaterialPrice(c EquipmentCategory, m MaterialType) int64 {
	return p.materials[c][m]
}

// script replays a fixed draw sequence and fails the test if it runs dry.
type script struct {
	draws []float64
	pos   int
}

func (s *script) Float64() float64 {
	if s.pos >= len(s.draws) {
		panic("script exhausted")
	}
	v := s.draws[s.pos]
	s.pos++
	return v
}

func entry(p float64, protection int, weapon, armor int64) LevelEntry {
	return LevelEntry{
		SuccessProbability: p,
		ProtectionCount:    protection,
		Price:              CategoryPrices{Weapon: weapon, Armor: armor},
	}
}

func testTable() mapTable {
	return mapTable{
		-1: entry(0.1, 10, 100000, 90000),
		1:  entry(1, 0, 10000, 10000),
		2:  entry(1, 0, 10000, 10000),
		3:  entry(1, 0, 10000, 10000),
		4:  entry(1, 0, 10000, 10000),
		5:  entry(0.6, 1, 20000, 18000),
		6:  entry(0.5, 2, 30000, 27000),
		7:  entry(0.4, 3, 40000, 36000),
		8:  entry(0.4, 4, 50000, 45000),
		9:  entry(0.3, 6, 60000, 54000),
		10: entry(0.25, 8, 100000, 90000),
	}
}

func testPrices() flatPrices {
	return flatPrices{
		protection: 2500000,
		materials: map[EquipmentCategory]map[MaterialType]int64{
			Weapon: {Enriched: 1200000, Perfect: 5600000},
			Armor:  {Enriched: 1200000, Perfect: 5300000},
		},
	}
}

func testEngine() *Engine { return NewEngine(testTable(), testPrices()) }
