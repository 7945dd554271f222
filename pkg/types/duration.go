package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var simpleDurationRegExp = regexp.MustCompile(`^(\d+)([hdw])$`)

var ErrNotSimpleDuration = errors.New("the given input is not simple duration format, valid format: [1-9][0-9]*[hdw]")

type SimpleDuration struct {
	Num      int
	Unit     string
	Duration Duration
}

func (d *SimpleDuration) String() string {
	return fmt.Sprintf("%d%s", d.Num, d.Unit)
}

func ParseSimpleDuration(s string) (*SimpleDuration, error) {
	if s == "" {
		return nil, nil
	}

	matches := simpleDurationRegExp.FindStringSubmatch(s)
	if matches == nil {
		return nil, errors.Wrapf(ErrNotSimpleDuration, "input %q is not a simple duration", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, err
	}

	unit := matches[2]
	switch unit {
	case "d":
		return &SimpleDuration{num, unit, Duration(time.Duration(num) * 24 * time.Hour)}, nil
	case "w":
		return &SimpleDuration{num, unit, Duration(time.Duration(num) * 7 * 24 * time.Hour)}, nil
	default:
		return &SimpleDuration{num, unit, Duration(time.Duration(num) * time.Hour)}, nil
	}
}

// Duration is a time.Duration that decodes from "800ms", "3s", "1d" or a number of seconds.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ParseDuration parses the textual forms accepted by Duration.
func ParseDuration(s string) (Duration, error) {
	if sd, err := ParseSimpleDuration(s); err == nil && sd != nil {
		return sd.Duration, nil
	}

	dd, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", s)
	}

	return Duration(dd), nil
}

func (d *Duration) set(o interface{}) error {
	switch t := o.(type) {
	case string:
		dd, err := ParseDuration(t)
		if err != nil {
			return err
		}
		*d = dd

	case float64:
		*d = Duration(int64(t * float64(time.Second)))

	case int:
		*d = Duration(time.Duration(t) * time.Second)

	case int64:
		*d = Duration(time.Duration(t) * time.Second)

	default:
		return fmt.Errorf("unsupported type %T value: %v", t, t)
	}

	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var o interface{}
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}

	return d.set(o)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var o interface{}
	if err := node.Decode(&o); err != nil {
		return err
	}

	return d.set(o)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
