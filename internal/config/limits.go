package config

import "fmt"

// LimitsConfig caps free-text metadata and note lengths, in runes.
type LimitsConfig struct {
	Name    int `toml:"name"`
	Title   int `toml:"title"`
	Year    int `toml:"year"`
	Subject int `toml:"subject"`
	Note    int `toml:"note"`
}

// Finalize applies defaults and validates the limits.
func (c *LimitsConfig) Finalize() error {
	if c.Name == 0 {
		c.Name = 100
	}
	if c.Title == 0 {
		c.Title = 200
	}
	if c.Year == 0 {
		c.Year = 4
	}
	if c.Subject == 0 {
		c.Subject = 200
	}
	if c.Note == 0 {
		c.Note = 5000
	}

	for name, v := range map[string]int{
		"name": c.Name, "title": c.Title, "year": c.Year, "subject": c.Subject, "note": c.Note,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *LimitsConfig) Merge(overlay *LimitsConfig) {
	if overlay.Name != 0 {
		c.Name = overlay.Name
	}
	if overlay.Title != 0 {
		c.Title = overlay.Title
	}
	if overlay.Year != 0 {
		c.Year = overlay.Year
	}
	if overlay.Subject != 0 {
		c.Subject = overlay.Subject
	}
	if overlay.Note != 0 {
		c.Note = overlay.Note
	}
}
