package services

import (
	"sort"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// KeySet declares the keys one partition takes from a bag.
type KeySet struct {
	// Stage names the consumer, used for diagnostics and the remediation hint.
	Stage    string
	Required []string
	Optional []string
}

// Partition splits bag into the keys declared by ks and the remainder.
// Every missing required key is reported at once. The input bag is not modified.
func Partition(location string, bag entities.Bag, ks KeySet) (part, rest entities.Bag, err error) {
	var missing []string
	for _, k := range ks.Required {
		if !bag.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return entities.Bag{}, bag, entities.NewMissingKeywordsError(location, ks.Stage, missing, InputsHint(ks.Stage))
	}

	part = entities.NewBag()
	taken := make([]string, 0, len(ks.Required)+len(ks.Optional))
	for _, k := range ks.Required {
		part = part.With(k, bag.Get(k).Get())
		taken = append(taken, k)
	}
	for _, k := range ks.Optional {
		if opt := bag.Get(k); opt.IsSet() && !part.Has(k) {
			part = part.With(k, opt.Get())
			taken = append(taken, k)
		}
	}
	return part, bag.Without(taken...), nil
}

// RejectLeftover fails if any key remains in bag.
func RejectLeftover(location string, bag entities.Bag) error {
	if bag.IsEmpty() {
		return nil
	}
	keys := bag.Keys()
	sort.Strings(keys)
	return entities.NewUnrecognizedKeywordsError(location, keys)
}

// InputsHint derives the input keyword most likely to supply stage,
// e.g. "optJ2" -> "opt_inputs". Names shorter than three characters have no hint.
func InputsHint(stage string) string {
	if len(stage) < 3 {
		return ""
	}
	return stage[:3] + "_inputs"
}
