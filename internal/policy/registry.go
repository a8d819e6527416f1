package policy

import "fmt"

// Get resolves a policy by name. Params that a policy does not use are
// ignored.
func Get(name string, params map[string]float64) (Policy, error) {
	switch name {
	case "", "none":
		return NewNone(), nil
	case "temp-hold":
		target := 300.0
		if v, ok := params["target"]; ok {
			target = v
		}
		return NewTempHold(target), nil
	case "load-follow":
		lf := NewLoadFollow()
		if v, ok := params["rpm_per_output"]; ok {
			lf.rpmPerUnit = v
		}
		return lf, nil
	}
	return nil, fmt.Errorf("unknown policy: %s (available: %v)", name, Names())
}

func Names() []string {
	return []string{"none", "temp-hold", "load-follow"}
}
