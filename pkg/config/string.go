package config

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StringSlice decodes from either a single string or a list of strings.
type StringSlice []string

func (s *StringSlice) decode(a interface{}) error {
	switch d := a.(type) {
	case nil:
		*s = nil

	case string:
		*s = StringSlice{d}

	case []interface{}:
		out := make(StringSlice, 0, len(d))
		for _, de := range d {
			str, ok := de.(string)
			if !ok {
				return errors.Errorf("unexpected element type %T for StringSlice: %+v", de, de)
			}
			out = append(out, str)
		}
		*s = out

	default:
		return errors.Errorf("unexpected type %T for StringSlice: %+v", d, d)
	}

	return nil
}

func (s *StringSlice) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}
		*s = StringSlice{str}
		return nil

	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		*s = ss
		return nil
	}

	return errors.Errorf("line %d: expected a string or a list of strings", node.Line)
}

func (s *StringSlice) UnmarshalJSON(b []byte) error {
	var a interface{}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}

	return s.decode(a)
}
