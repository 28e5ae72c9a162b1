// Package prompt builds the outbound generation prompt from a persona,
// the current view, and a whitelisted snapshot of host state. Assembly
// is deterministic for identical inputs and never fails: oversized
// fields are truncated to a character budget instead of erroring.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// protocolRules teaches the model the action marker grammar. Kept in
// one place so every persona speaks the same protocol.
const protocolRules = `When the user asks you to navigate, open a dialog, start a payment, or
create a record, append exactly one action command to your reply using
this form:

{"action":"<TYPE>","payload":{...}}

Supported types and required payload fields:
- NAVIGATE: {"view":"<view id>"}
- OPEN_MODAL: {"modal":"<modal id>"}
- INITIATE_PAYMENT: {"amount":<number>,"recipient":"<account>"}
- CREATE_RECORD: {"entity":"<entity>","fields":{...}}
- LOG_EVENT: {"message":"<text>"}

Emit at most one command per reply. Everything outside the command is
shown to the user verbatim.`

// Snapshot carries the whitelisted host state fields included in the
// prompt. The host decides what goes in; the assembler only bounds it.
type Snapshot map[string]any

// Assembler renders prompts for one persona with one field budget.
type Assembler struct {
	persona Persona
	budget  int
}

// NewAssembler builds an assembler from config. An unrecognized persona
// id falls back to the configured default.
func NewAssembler(cfg *Config, personaID string) *Assembler {
	return &Assembler{
		persona: cfg.Persona(personaID),
		budget:  cfg.FieldBudget,
	}
}

// PersonaID returns the resolved persona id.
func (a *Assembler) PersonaID() string { return a.persona.ID }

// Build renders the outbound prompt. Deterministic given identical
// inputs; snapshot fields appear in sorted key order and each field is
// truncated to the budget, keeping the most recent items of sequences.
func (a *Assembler) Build(view string, snap Snapshot) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(a.persona.Rules))
	b.WriteString("\nStyle: ")
	b.WriteString(a.persona.Style)
	b.WriteString("\n\n")
	b.WriteString(protocolRules)
	b.WriteString("\n\nCurrent view: ")
	b.WriteString(view)
	b.WriteString("\n")

	if len(snap) > 0 {
		b.WriteString("\nState snapshot:\n")
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("- ")
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(renderField(snap[k], a.budget))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderField serializes one snapshot field within budget characters.
// Sequences drop oldest items first; scalars are cut at the budget.
func renderField(v any, budget int) string {
	if seq, ok := v.([]any); ok {
		return renderSequence(seq, budget)
	}

	var s string
	switch tv := v.(type) {
	case string:
		s = tv
	default:
		data, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(data)
		}
	}
	return truncate(s, budget)
}

// renderSequence keeps as many trailing items as fit the budget,
// preserving their original order.
func renderSequence(seq []any, budget int) string {
	var kept []string
	used := 2 // brackets
	for i := len(seq) - 1; i >= 0; i-- {
		data, err := json.Marshal(seq[i])
		if err != nil {
			continue
		}
		itemLen := len(data)
		if len(kept) > 0 {
			itemLen++ // comma
		}
		if used+itemLen > budget {
			break
		}
		used += itemLen
		kept = append([]string{string(data)}, kept...)
	}
	if len(kept) == 0 && len(seq) > 0 {
		// Budget too small for even the newest item: cut it instead of
		// dropping the field entirely.
		data, err := json.Marshal(seq[len(seq)-1])
		if err == nil {
			return truncate(string(data), budget)
		}
	}
	return "[" + strings.Join(kept, ",") + "]"
}

func truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
