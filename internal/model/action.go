package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Action string

const (
	ActionJump   Action = "Jump"
	ActionBend   Action = "Bend"
	ActionUnbend Action = "Unbend"
)

// AllActions lists every action in application order.
var AllActions = []Action{ActionJump, ActionBend, ActionUnbend}

func ParseAction(s string) (Action, error) {
	for _, a := range AllActions {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action: %q", s)
}

func (a Action) bit() ActionSet {
	switch a {
	case ActionJump:
		return 1 << 0
	case ActionBend:
		return 1 << 1
	case ActionUnbend:
		return 1 << 2
	default:
		return 0
	}
}

// ActionSet is a set of actions; adding an action twice is a no-op.
type ActionSet uint8

func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.Add(a)
	}
	return s
}

func (s ActionSet) Add(a Action) ActionSet {
	return s | a.bit()
}

func (s ActionSet) Has(a Action) bool {
	bit := a.bit()
	return bit != 0 && s&bit != 0
}

func (s ActionSet) Len() int {
	n := 0
	for _, a := range AllActions {
		if s.Has(a) {
			n++
		}
	}
	return n
}

// Actions returns the members in application order.
func (s ActionSet) Actions() []Action {
	out := make([]Action, 0, 3)
	for _, a := range AllActions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s ActionSet) String() string {
	names := make([]string, 0, 3)
	for _, a := range s.Actions() {
		names = append(names, string(a))
	}
	return "{" + strings.Join(names, ",") + "}"
}

func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Actions())
}

func (s *ActionSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out ActionSet
	for _, name := range names {
		a, err := ParseAction(name)
		if err != nil {
			return err
		}
		out = out.Add(a)
	}
	*s = out
	return nil
}
