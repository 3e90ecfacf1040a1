package rules

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Rules that omit the hard key are hard. Each record decodes through a
// plain alias preset with Hard = true; unknown keys are still rejected.

func (r *EntryRule) UnmarshalYAML(value *yaml.Node) error {
	type plain EntryRule
	p := plain{Hard: true}
	if err := decodeHard(value, &p, "kind", "target", "max_distance", "hard"); err != nil {
		return err
	}
	*r = EntryRule(p)
	return nil
}

func (r *DirectRule) UnmarshalYAML(value *yaml.Node) error {
	type plain DirectRule
	p := plain{Hard: true}
	if err := decodeHard(value, &p, "target", "condition", "hard"); err != nil {
		return err
	}
	*r = DirectRule(p)
	return nil
}

func (r *SeparationRule) UnmarshalYAML(value *yaml.Node) error {
	type plain SeparationRule
	p := plain{Hard: true}
	if err := decodeHard(value, &p, "target", "hard"); err != nil {
		return err
	}
	*r = SeparationRule(p)
	return nil
}

func (r *VisibilityRule) UnmarshalYAML(value *yaml.Node) error {
	type plain VisibilityRule
	p := plain{Hard: true}
	if err := decodeHard(value, &p, "target", "hard"); err != nil {
		return err
	}
	*r = VisibilityRule(p)
	return nil
}

func decodeHard(value *yaml.Node, out any, fields ...string) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if !slices.Contains(fields, key.Value) {
				return fmt.Errorf("line %d: field %s not found", key.Line, key.Value)
			}
		}
	}
	return value.Decode(out)
}
