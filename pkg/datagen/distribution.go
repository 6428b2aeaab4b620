package datagen

import (
	"fmt"
	"strings"
)

// Distribution is the policy that fills a generated column.
type Distribution int

const (
	InvalidDistribution Distribution = iota
	Uniform
	Serial
	Rotate
)

var distributionNames = map[Distribution]string{
	Uniform: "uniform",
	Serial:  "serial",
	Rotate:  "rotate",
}

func (d Distribution) String() string {
	if name, ok := distributionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Distribution(%d)", int(d))
}

// ParseDistribution resolves a case-insensitive distribution name.
func ParseDistribution(s string) (Distribution, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for d, name := range distributionNames {
		if name == want {
			return d, nil
		}
	}
	return InvalidDistribution, fmt.Errorf("unknown distribution %q", s)
}

func (d Distribution) MarshalText() ([]byte, error) {
	if _, ok := distributionNames[d]; !ok {
		return nil, fmt.Errorf("cannot marshal %s", d)
	}
	return []byte(d.String()), nil
}

func (d *Distribution) UnmarshalText(text []byte) error {
	parsed, err := ParseDistribution(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
