package pricing

import (
	"fmt"
	"strings"
)

// CargoDimension is the size class of the delivered cargo.
// The zero value means the dimension was not provided.
type CargoDimension int

const (
	CargoSmall CargoDimension = iota + 1
	CargoLarge
)

var cargoDimensionNames = map[CargoDimension]string{
	CargoSmall: "SMALL",
	CargoLarge: "LARGE",
}

// Valid reports whether d is one of the enumerated dimensions.
func (d CargoDimension) Valid() bool {
	_, ok := cargoDimensionNames[d]
	return ok
}

func (d CargoDimension) String() string {
	if name, ok := cargoDimensionNames[d]; ok {
		return name
	}
	return ""
}

// MarshalText encodes the dimension as its upper-case name.
func (d CargoDimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the names case-insensitively. Empty text leaves the
// dimension unset.
func (d *CargoDimension) UnmarshalText(text []byte) error {
	parsed, err := ParseCargoDimension(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseCargoDimension converts "SMALL" or "LARGE" to a CargoDimension.
func ParseCargoDimension(raw string) (CargoDimension, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if name == "" {
		return 0, nil
	}
	for d, n := range cargoDimensionNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown cargo dimension %q", raw)
}

// ServiceLoad is the current demand level of the delivery service.
// Tiers are ordered, so comparisons like load >= LoadHigh are meaningful.
// The zero value means the load was not provided.
type ServiceLoad int

const (
	LoadLow ServiceLoad = iota + 1
	LoadNormal
	LoadIncreased
	LoadHigh
	LoadVeryHigh
)

var serviceLoadNames = map[ServiceLoad]string{
	LoadLow:       "LOW",
	LoadNormal:    "NORMAL",
	LoadIncreased: "INCREASED",
	LoadHigh:      "HIGH",
	LoadVeryHigh:  "VERY_HIGH",
}

// ServiceLoads returns every load tier in ascending order.
func ServiceLoads() []ServiceLoad {
	return []ServiceLoad{LoadLow, LoadNormal, LoadIncreased, LoadHigh, LoadVeryHigh}
}

// Valid reports whether l is one of the enumerated tiers.
func (l ServiceLoad) Valid() bool {
	_, ok := serviceLoadNames[l]
	return ok
}

func (l ServiceLoad) String() string {
	if name, ok := serviceLoadNames[l]; ok {
		return name
	}
	return ""
}

// MarshalText encodes the tier as its upper-case name.
func (l ServiceLoad) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts the names case-insensitively. Empty text leaves the
// load unset.
func (l *ServiceLoad) UnmarshalText(text []byte) error {
	parsed, err := ParseServiceLoad(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseServiceLoad converts a tier name such as "VERY_HIGH" to a ServiceLoad.
// Hyphens and spaces are accepted in place of the underscore.
func ParseServiceLoad(raw string) (ServiceLoad, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
	if name == "" {
		return 0, nil
	}
	for l, n := range serviceLoadNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown delivery service load %q", raw)
}
