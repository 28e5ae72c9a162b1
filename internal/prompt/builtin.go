package prompt

import (
	"embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed personas/*.yaml
var personaFS embed.FS

var (
	builtinOnce sync.Once
	builtin     []Persona
)

// builtinOrder fixes the listing order; the first entry doubles as the
// last-resort fallback persona.
var builtinOrder = []string{"advisor", "concierge", "analyst"}

// BuiltinPersonas returns the embedded persona set.
func BuiltinPersonas() []Persona {
	builtinOnce.Do(func() {
		byID := make(map[string]Persona)
		entries, err := personaFS.ReadDir("personas")
		if err != nil {
			entries = nil
		}
		for _, entry := range entries {
			data, err := personaFS.ReadFile("personas/" + entry.Name())
			if err != nil {
				continue
			}
			var p Persona
			if err := yaml.Unmarshal(data, &p); err != nil || p.ID == "" {
				continue
			}
			byID[p.ID] = p
		}
		for _, id := range builtinOrder {
			if p, ok := byID[id]; ok {
				builtin = append(builtin, p)
			}
		}
		if len(builtin) == 0 {
			builtin = []Persona{{
				ID:          "advisor",
				DisplayName: "Financial Advisor",
				Style:       "measured, plain-spoken",
				Rules:       "Answer from the provided snapshot only.",
			}}
		}
	})
	out := make([]Persona, len(builtin))
	copy(out, builtin)
	return out
}
