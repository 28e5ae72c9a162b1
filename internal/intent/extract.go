// Package intent separates human-readable prose from an embedded
// machine command in generation output. Extraction is pure and total:
// it never panics, and a failed or absent command never removes text
// from the prose returned to the caller.
package intent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	tagPrefix  = "[ACTION:"
	blockStart = "@@JSON_START@@"
	blockEnd   = "@@JSON_END@@"
)

// Syntaxes are tried in fixed priority order; within a syntax,
// candidates keep text order.
const (
	synTag = iota
	synBlock
	synBare
)

type candidate struct {
	start   int
	end     int
	syntax  int
	typeRaw string // tag syntax only; block/bare carry the type in the body
	body    string // raw JSON text
	defect  error  // syntactic problem found while collecting
}

// Extract scans raw generation output for at most one action marker.
// The first candidate (tag, then delimited block, then bare JSON) whose
// payload passes the per-type schema wins; every other candidate is
// recorded in Rejected. When nothing wins, Prose is raw unchanged.
func Extract(raw string, now time.Time) Result {
	cands := collect(raw)
	if len(cands) == 0 {
		return Result{Prose: raw}
	}

	var action *Action
	var winner candidate
	var rejected []RejectedCandidate

	for _, c := range cands {
		span := raw[c.start:c.end]
		if action != nil {
			rejected = append(rejected, RejectedCandidate{
				Span:   span,
				Reason: RejectDuplicateIgnored,
			})
			continue
		}
		a, err := realize(c, span, now)
		if err != nil {
			rejected = append(rejected, RejectedCandidate{
				Span:   span,
				Reason: RejectParseFailed,
				Detail: err.Error(),
			})
			continue
		}
		action = a
		winner = c
	}

	if action == nil {
		// Extraction failure must never hide information from the user.
		return Result{Prose: raw, Rejected: rejected}
	}

	return Result{
		Prose:    removeSpan(raw, winner.start, winner.end),
		Action:   action,
		Rejected: rejected,
	}
}

// realize promotes a candidate to an Action, or explains why it cannot be.
func realize(c candidate, span string, now time.Time) (*Action, error) {
	if c.defect != nil {
		return nil, c.defect
	}

	var typeRaw string
	var payload map[string]any

	switch c.syntax {
	case synTag:
		typeRaw = c.typeRaw
		payload = map[string]any{}
		if c.body != "" {
			if err := json.Unmarshal([]byte(c.body), &payload); err != nil {
				return nil, fmt.Errorf("payload is not a JSON object: %v", err)
			}
		}

	default:
		var envelope map[string]any
		if err := json.Unmarshal([]byte(c.body), &envelope); err != nil {
			return nil, fmt.Errorf("marker is not a JSON object: %v", err)
		}
		typeRaw, _ = envelope["action"].(string)
		if typeRaw == "" {
			typeRaw, _ = envelope["ACTION"].(string)
		}
		if typeRaw == "" {
			return nil, fmt.Errorf("marker has no string action key")
		}
		payload = map[string]any{}
		if p, ok := envelope["payload"]; ok {
			m, ok := p.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("payload must be a JSON object")
			}
			payload = m
		}
	}

	t, ok := ParseActionType(typeRaw)
	if !ok {
		return nil, fmt.Errorf("unrecognized action type %q", typeRaw)
	}
	if err := validatePayload(t, payload); err != nil {
		return nil, err
	}

	return &Action{
		Type:        t,
		Payload:     payload,
		SourceSpan:  span,
		ExtractedAt: now,
	}, nil
}

// collect gathers candidates from all syntaxes, bare JSON last and
// never overlapping an explicit marker.
func collect(raw string) []candidate {
	cands := findTags(raw)
	cands = append(cands, findBlocks(raw)...)
	cands = append(cands, findBare(raw, cands)...)

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].syntax != cands[j].syntax {
			return cands[i].syntax < cands[j].syntax
		}
		return cands[i].start < cands[j].start
	})
	return cands
}

// findTags locates [ACTION:<TYPE>: <json>] markers.
func findTags(raw string) []candidate {
	var cands []candidate
	for from := 0; ; {
		rel := strings.Index(raw[from:], tagPrefix)
		if rel < 0 {
			break
		}
		start := from + rel
		i := start + len(tagPrefix)

		// Type runs until ':' or ']'.
		t := i
		for t < len(raw) && isTypeChar(raw[t]) {
			t++
		}
		typeRaw := raw[i:t]

		c := candidate{start: start, syntax: synTag, typeRaw: typeRaw}
		switch {
		case t < len(raw) && raw[t] == ']':
			c.end = t + 1

		case t < len(raw) && raw[t] == ':':
			p := t + 1
			for p < len(raw) && (raw[p] == ' ' || raw[p] == '\t') {
				p++
			}
			if p < len(raw) && raw[p] == '{' {
				if j, ok := scanObject(raw, p); ok {
					c.body = raw[p:j]
					k := j
					for k < len(raw) && (raw[k] == ' ' || raw[k] == '\t') {
						k++
					}
					if k < len(raw) && raw[k] == ']' {
						c.end = k + 1
					} else {
						c.end = j
						c.defect = fmt.Errorf("action tag missing closing bracket")
					}
				} else {
					c.end = len(raw)
					c.defect = fmt.Errorf("action tag payload has unbalanced braces")
				}
			} else if close := strings.IndexByte(raw[p:], ']'); close >= 0 {
				c.body = strings.TrimSpace(raw[p : p+close])
				c.end = p + close + 1
			} else {
				c.end = len(raw)
				c.defect = fmt.Errorf("action tag is unterminated")
			}

		default:
			c.end = len(raw)
			c.defect = fmt.Errorf("action tag is unterminated")
		}

		cands = append(cands, c)
		from = c.end
	}
	return cands
}

// findBlocks locates @@JSON_START@@ ... @@JSON_END@@ markers.
func findBlocks(raw string) []candidate {
	var cands []candidate
	for from := 0; ; {
		rel := strings.Index(raw[from:], blockStart)
		if rel < 0 {
			break
		}
		start := from + rel
		bodyFrom := start + len(blockStart)

		c := candidate{start: start, syntax: synBlock}
		if endRel := strings.Index(raw[bodyFrom:], blockEnd); endRel >= 0 {
			c.body = strings.TrimSpace(raw[bodyFrom : bodyFrom+endRel])
			c.end = bodyFrom + endRel + len(blockEnd)
		} else {
			c.body = strings.TrimSpace(raw[bodyFrom:])
			c.end = len(raw)
			c.defect = fmt.Errorf("json block is unterminated")
		}
		cands = append(cands, c)
		from = c.end
	}
	return cands
}

// findBare locates balanced top-level JSON objects carrying an
// "action" or "ACTION" key, skipping spans already claimed by an
// explicit marker.
func findBare(raw string, taken []candidate) []candidate {
	var cands []candidate
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' || claimed(i, taken) {
			continue
		}
		j, ok := scanObject(raw, i)
		if !ok {
			continue
		}
		body := raw[i:j]
		if !strings.Contains(body, `"action"`) && !strings.Contains(body, `"ACTION"`) {
			i = j - 1
			continue
		}
		cands = append(cands, candidate{start: i, end: j, syntax: synBare, body: body})
		i = j - 1
	}
	return cands
}

func claimed(pos int, taken []candidate) bool {
	for _, c := range taken {
		if pos >= c.start && pos < c.end {
			return true
		}
	}
	return false
}

// scanObject returns the index just past the '}' matching the '{' at
// start, honoring JSON string and escape rules.
func scanObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// removeSpan cuts [start,end) out of raw and tidies the seam.
func removeSpan(raw string, start, end int) string {
	pre := strings.TrimRight(raw[:start], " \t")
	post := strings.TrimLeft(raw[end:], " \t")
	var joined string
	switch {
	case pre == "":
		joined = post
	case post == "":
		joined = pre
	case strings.HasSuffix(pre, "\n") || strings.HasPrefix(post, "\n"):
		joined = pre + post
	default:
		joined = pre + " " + post
	}
	return strings.TrimSpace(joined)
}

func isTypeChar(ch byte) bool {
	return ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}
