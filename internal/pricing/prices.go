package pricing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xtding233/refine-backend/internal/refine"
)

var ErrNegativePrice = errors.New("price must be >= 0")

// Defaults used when no configuration overrides them.
const (
	DefaultProtectionUnit = 2_500_000
	DefaultWeaponEnriched = 1_200_000
	DefaultWeaponPerfect  = 5_600_000
	DefaultArmorEnriched  = 1_200_000
	DefaultArmorPerfect   = 5_300_000
)

// MaterialTable holds material prices; rows are equipment categories,
// columns material types.
type MaterialTable [2][2]int64

// Prices is a value snapshot of the prices one batch is run with.
type Prices struct {
	ProtectionUnit int64
	Materials      MaterialTable
}

// Defaults returns the stock price list.
func Defaults() Prices {
	var m MaterialTable
	m[refine.Weapon][refine.Enriched] = DefaultWeaponEnriched
	m[refine.Weapon][refine.Perfect] = DefaultWeaponPerfect
	m[refine.Armor][refine.Enriched] = DefaultArmorEnriched
	m[refine.Armor][refine.Perfect] = DefaultArmorPerfect
	return Prices{ProtectionUnit: DefaultProtectionUnit, Materials: m}
}

func (p Prices) ProtectionUnitPrice() int64 { return p.ProtectionUnit }

func (p Prices) MaterialPrice(c refine.EquipmentCategory, m refine.MaterialType) int64 {
	if c < 0 || int(c) >= len(p.Materials) || m < 0 || int(m) >= len(p.Materials[c]) {
		return 0
	}
	return p.Materials[c][m]
}

// WithProtectionUnit returns a copy with a different protection unit price.
func (p Prices) WithProtectionUnit(v int64) Prices {
	p.ProtectionUnit = v
	return p
}

// Validate rejects negative prices.
func (p Prices) Validate() error {
	if p.ProtectionUnit < 0 {
		return fmt.Errorf("protection unit: %w", ErrNegativePrice)
	}
	for _, c := range refine.Categories() {
		for _, m := range refine.Materials() {
			if p.Materials[c][m] < 0 {
				return fmt.Errorf("%s %s material: %w", c, m, ErrNegativePrice)
			}
		}
	}
	return nil
}

// Market holds the user-adjustable market prices. Simulations take a
// Snapshot and never read the market while running.
type Market struct {
	mu     sync.RWMutex
	prices Prices
}

func NewMarket(initial Prices) (*Market, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Market{prices: initial}, nil
}

func (m *Market) Snapshot() Prices {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prices
}

// Set replaces every market price.
func (m *Market) Set(p Prices) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.prices = p
	m.mu.Unlock()
	return nil
}

// SetProtectionUnit updates the market price of one protection unit.
func (m *Market) SetProtectionUnit(v int64) error {
	if v < 0 {
		return fmt.Errorf("protection unit: %w", ErrNegativePrice)
	}
	m.mu.Lock()
	m.prices.ProtectionUnit = v
	m.mu.Unlock()
	return nil
}
