package intent

import "fmt"

// validatePayload checks the per-type structural schema.
// Unknown payload keys pass through untouched; only the required shape
// is enforced.
func validatePayload(t ActionType, p map[string]any) error {
	switch t {
	case ActionNavigate:
		return requireString(p, "view")
	case ActionOpenModal:
		return requireString(p, "modal")
	case ActionInitiatePayment:
		if err := requirePositiveNumber(p, "amount"); err != nil {
			return err
		}
		return requireString(p, "recipient")
	case ActionCreateRecord:
		return requireString(p, "entity")
	case ActionLogEvent:
		return requireString(p, "message")
	default:
		return fmt.Errorf("unrecognized action type %q", t)
	}
}

func requireString(p map[string]any, key string) error {
	v, ok := p[key]
	if !ok {
		return fmt.Errorf("payload missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("payload field %q must be a string", key)
	}
	if s == "" {
		return fmt.Errorf("payload field %q must not be empty", key)
	}
	return nil
}

func requirePositiveNumber(p map[string]any, key string) error {
	v, ok := p[key]
	if !ok {
		return fmt.Errorf("payload missing %q", key)
	}
	// json.Unmarshal into map[string]any always yields float64 for numbers.
	n, ok := v.(float64)
	if !ok {
		return fmt.Errorf("payload field %q must be a number", key)
	}
	if n <= 0 {
		return fmt.Errorf("payload field %q must be positive", key)
	}
	return nil
}
