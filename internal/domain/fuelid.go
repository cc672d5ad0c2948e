package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// FuelShares is the parsed form of an in_use_fuel_id string: fuel name to
// share of VMT, shares in [0,1] summing to 1. Treat as read-only once parsed.
type FuelShares map[string]float64

// Ordered returns the fuel names in sorted order for deterministic iteration.
func (fs FuelShares) Ordered() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const fuelShareSumTolerance = 1e-9

// ParseFuelShares parses a dictionary-literal fuel id such as
// "{'pump gasoline': 1.0}" with a restricted literal parser. The grammar is
// a single brace-delimited list of 'name': number pairs; nothing is ever
// evaluated.
func ParseFuelShares(fuelID string) (FuelShares, error) {
	s := strings.TrimSpace(fuelID)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "not a brace-delimited mapping"}
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "empty mapping"}
	}

	shares := make(FuelShares)
	sum := 0.0
	for _, pair := range strings.Split(body, ",") {
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "entry is not a 'name': share pair"}
		}
		name = strings.TrimSpace(name)
		if len(name) < 3 || !isQuoted(name) {
			return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "fuel name is not quoted"}
		}
		name = name[1 : len(name)-1]
		if name == "" {
			return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "empty fuel name"}
		}
		share, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "share is not a number"}
		}
		if share < 0 || share > 1 || math.IsNaN(share) {
			return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "share outside [0,1]"}
		}
		if _, dup := shares[name]; dup {
			return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "duplicate fuel name"}
		}
		shares[name] = share
		sum += share
	}
	if math.Abs(sum-1.0) > fuelShareSumTolerance {
		return nil, &InvalidFuelIDError{FuelID: fuelID, Reason: "shares do not sum to 1"}
	}
	return shares, nil
}

func isQuoted(s string) bool {
	return (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"')
}
