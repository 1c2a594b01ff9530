package persona

import (
	"encoding/json"
	"fmt"
	"os"
)

// Persona is a simulated sales prospect. The catalog is read once at
// startup and never mutated.
type Persona struct {
	Company    string `json:"company"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Industry   string `json:"industry"`
	PainPoints string `json:"pain_points,omitempty"`
}

// Label renders the persona the way it appears in selection lists.
func (p Persona) Label() string {
	return fmt.Sprintf("%s — %s (%s) — %s", p.Company, p.Name, p.Role, p.Industry)
}

// Load reads the prospect catalog from a JSON file. A persona missing any
// required field fails the whole load; pain_points is optional.
func Load(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prospect catalog: %w", err)
	}

	var personas []Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("failed to parse prospect catalog: %w", err)
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("prospect catalog %s is empty", path)
	}

	for i, p := range personas {
		if p.Company == "" || p.Name == "" || p.Role == "" || p.Industry == "" {
			return nil, fmt.Errorf("prospect %d in %s is missing a required field (company, name, role, industry)", i, path)
		}
	}
	return personas, nil
}
