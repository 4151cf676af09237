package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/alexraskin/hovergallery/internal/models"
)

// Cache holds the last loaded gallery records for ttl. A zero ttl disables it.
//
// Each record carries a generation that every invalidation bumps. A reader
// takes the generation before going to the store and fills the cache with
// the *IfCurrent setters, so a value read before a write can never be
// cached after that write's invalidation.
type Cache struct {
	mu       sync.RWMutex
	items    []models.MenuEntry
	itemsExp time.Time
	itemsGen uint64
	fonts    *models.FontSettings
	fontsExp time.Time
	fontsGen uint64
	ttl      time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

func (c *Cache) GetItems() ([]models.MenuEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.items == nil || time.Now().After(c.itemsExp) {
		return nil, false
	}
	return slices.Clone(c.items), true
}

func (c *Cache) ItemsGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemsGen
}

func (c *Cache) SetItems(items []models.MenuEntry) {
	c.SetItemsIfCurrent(c.ItemsGeneration(), items)
}

// SetItemsIfCurrent caches items unless the items record was invalidated
// since gen was taken. It reports whether the value was stored.
func (c *Cache) SetItemsIfCurrent(gen uint64, items []models.MenuEntry) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.itemsGen {
		return false
	}
	c.items = slices.Clone(items)
	if c.items == nil {
		c.items = []models.MenuEntry{}
	}
	c.itemsExp = time.Now().Add(c.ttl)
	return true
}

func (c *Cache) GetFontSettings() (*models.FontSettings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fonts == nil || time.Now().After(c.fontsExp) {
		return nil, false
	}
	f := *c.fonts
	return &f, true
}

func (c *Cache) FontSettingsGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fontsGen
}

func (c *Cache) SetFontSettings(f models.FontSettings) {
	c.SetFontSettingsIfCurrent(c.FontSettingsGeneration(), f)
}

// SetFontSettingsIfCurrent is SetItemsIfCurrent for the font settings.
func (c *Cache) SetFontSettingsIfCurrent(gen uint64, f models.FontSettings) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.fontsGen {
		return false
	}
	c.fonts = &f
	c.fontsExp = time.Now().Add(c.ttl)
	return true
}

func (c *Cache) InvalidateItems() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.itemsGen++
}

func (c *Cache) InvalidateFontSettings() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts = nil
	c.fontsGen++
}
