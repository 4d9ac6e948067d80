package preset

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Action is a per-tag de-identification action.
type Action string

const (
	ActionRemove  Action = "remove"  // delete the tag from the dataset
	ActionEmpty   Action = "empty"   // keep the tag, zero-length value
	ActionReplace Action = "replace" // set the tag to the rule's replacement
	ActionHash    Action = "hash"    // remap a UID through the identity mapper
	ActionKeep    Action = "keep"    // pass through unchanged
	ActionClean   Action = "clean"   // scrub identifying substrings from the value
)

var validActions = map[Action]bool{
	ActionRemove:  true,
	ActionEmpty:   true,
	ActionReplace: true,
	ActionHash:    true,
	ActionKeep:    true,
	ActionClean:   true,
}

// DateMethod selects how date-bearing tags outside explicit rules are handled.
type DateMethod string

const (
	DateRemove DateMethod = "remove"
	DateShift  DateMethod = "shift"
	DateKeep   DateMethod = "keep"
)

// PrivateAction selects the default treatment of private-group tags.
type PrivateAction string

const (
	PrivateRemove PrivateAction = "remove"
	PrivateKeep   PrivateAction = "keep"
)

// Rule binds one tag to one action.
type Rule struct {
	Tag         string `yaml:"tag"`
	Action      Action `yaml:"action"`
	Replacement string `yaml:"replacement,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// DatePolicy is the preset-wide date handling strategy. ShiftDays is
// required when Method is "shift"; its sign may be negative.
type DatePolicy struct {
	Method    DateMethod `yaml:"method"`
	ShiftDays int        `yaml:"shift_days,omitempty"`
}

// PrivatePolicy is the default treatment of tags in private groups that no
// explicit rule addresses.
type PrivatePolicy struct {
	Action PrivateAction `yaml:"action"`
}

// Preset is a named, versioned bundle of rules and policies. It is the
// engine's sole configuration input and is read-only after Compile.
type Preset struct {
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description,omitempty"`
	Version      string        `yaml:"version,omitempty"`
	Compliance   []string      `yaml:"compliance,omitempty"`
	DateHandling DatePolicy    `yaml:"date_handling"`
	PrivateTags  PrivatePolicy `yaml:"private_tags"`
	Rules        []Rule        `yaml:"rules"`
}

// ConfigError reports an invalid preset. It is raised before any file is
// touched; a preset either compiles fully or is rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid preset: %s: %s", e.Field, e.Reason)
}

// CompiledRule is a Rule with its selector parsed into a dictionary tag.
type CompiledRule struct {
	Tag  tag.Tag
	Rule Rule
}

// CompiledPreset is a validated Preset plus a dispatch table built once at
// load time. Shared read-only across all concurrent file processing.
type CompiledPreset struct {
	Preset

	rules []CompiledRule
	byTag map[tag.Tag]Rule
}

var tagPattern = regexp.MustCompile(`^\(([0-9A-Fa-f]{4}),([0-9A-Fa-f]{4})\)$`)

// ParseTag parses a "(gggg,eeee)" selector into a dictionary tag.
func ParseTag(s string) (tag.Tag, error) {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return tag.Tag{}, fmt.Errorf("malformed tag selector %q, want (gggg,eeee)", s)
	}
	group, _ := strconv.ParseUint(m[1], 16, 16)
	elem, _ := strconv.ParseUint(m[2], 16, 16)
	return tag.Tag{Group: uint16(group), Element: uint16(elem)}, nil
}

// Compile validates the preset and builds the rule dispatch table. When two
// rules name the same tag, the first one in declared order wins and the
// duplicate is dropped.
func (p Preset) Compile() (*CompiledPreset, error) {
	if p.Name == "" {
		return nil, &ConfigError{Field: "name", Reason: "must not be empty"}
	}

	switch p.DateHandling.Method {
	case DateRemove, DateKeep:
	case DateShift:
		if p.DateHandling.ShiftDays == 0 {
			return nil, &ConfigError{Field: "date_handling.shift_days", Reason: "required for method \"shift\""}
		}
	default:
		return nil, &ConfigError{
			Field:  "date_handling.method",
			Reason: fmt.Sprintf("unknown method %q", p.DateHandling.Method),
		}
	}

	switch p.PrivateTags.Action {
	case PrivateRemove, PrivateKeep:
	case "":
		p.PrivateTags.Action = PrivateRemove
	default:
		return nil, &ConfigError{
			Field:  "private_tags.action",
			Reason: fmt.Sprintf("unknown action %q", p.PrivateTags.Action),
		}
	}

	cp := &CompiledPreset{
		Preset: p,
		byTag:  make(map[tag.Tag]Rule, len(p.Rules)),
	}

	for i, r := range p.Rules {
		field := fmt.Sprintf("rules[%d]", i)

		t, err := ParseTag(r.Tag)
		if err != nil {
			return nil, &ConfigError{Field: field + ".tag", Reason: err.Error()}
		}
		if !validActions[r.Action] {
			return nil, &ConfigError{
				Field:  field + ".action",
				Reason: fmt.Sprintf("unknown action %q", r.Action),
			}
		}
		if r.Action == ActionReplace && r.Replacement == "" {
			return nil, &ConfigError{
				Field:  field + ".replacement",
				Reason: "required for action \"replace\"",
			}
		}

		if _, dup := cp.byTag[t]; dup {
			continue // first declared rule wins
		}
		cp.byTag[t] = r
		cp.rules = append(cp.rules, CompiledRule{Tag: t, Rule: r})
	}

	return cp, nil
}

// CompiledRules returns the rules in declared order, duplicates removed.
func (c *CompiledPreset) CompiledRules() []CompiledRule {
	return c.rules
}

// RuleFor looks up the rule addressing t, if any.
func (c *CompiledPreset) RuleFor(t tag.Tag) (Rule, bool) {
	r, ok := c.byTag[t]
	return r, ok
}
