package reactor

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialize encodes the current state as one key=value line per field, in a
// fixed order. Floats use the shortest representation that round-trips, so
// Restore(Serialize()) is lossless.
func (r *Reactor) Serialize() string {
	var b strings.Builder
	s := &r.state
	for _, name := range fieldOrder {
		if p := s.floatField(name); p != nil {
			fmt.Fprintf(&b, "%s=%s\n", name, strconv.FormatFloat(*p, 'g', -1, 64))
			continue
		}
		if p := s.boolField(name); p != nil {
			fmt.Fprintf(&b, "%s=%s\n", name, strconv.FormatBool(*p))
		}
	}
	return b.String()
}

type decodedField struct {
	name   string
	num    float64
	flag   bool
	isFlag bool
}

// Restore decodes text and overwrites every state field whose name and type
// match a decoded entry. Unknown keys are ignored, as are known keys carrying
// the wrong type. On malformed input it returns ErrDecode and mutates
// nothing: decoding completes in full before any field is written.
func (r *Reactor) Restore(text string) error {
	fields, err := decodeSnapshot(text)
	if err != nil {
		return err
	}
	s := &r.state
	for _, f := range fields {
		if f.isFlag {
			if p := s.boolField(f.name); p != nil {
				*p = f.flag
			}
			continue
		}
		if p := s.floatField(f.name); p != nil {
			*p = f.num
		}
	}
	return nil
}

func decodeSnapshot(text string) ([]decodedField, error) {
	var fields []decodedField
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrDecode, line)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			return nil, fmt.Errorf("%w: %q", ErrDecode, line)
		}
		// Numbers first: ParseBool would happily claim "1" and "0".
		if num, err := strconv.ParseFloat(value, 64); err == nil {
			fields = append(fields, decodedField{name: name, num: num})
			continue
		}
		switch value {
		case "true", "false":
			fields = append(fields, decodedField{name: name, flag: value == "true", isFlag: true})
		default:
			return nil, fmt.Errorf("%w: %q", ErrDecode, line)
		}
	}
	return fields, nil
}
