package search

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntityType classifies a company in the directory.
type EntityType string

const (
	EntityManufacturer EntityType = "manufacturer"
	EntityDistributor  EntityType = "distributor"
	EntityRetailer     EntityType = "retailer"
	EntityWholesaler   EntityType = "wholesaler"
	EntityImporter     EntityType = "importer"
	EntityTrader       EntityType = "trader"
	EntitySupplier     EntityType = "supplier"
)

// exporterFilterValue is accepted as an explicit entity filter and mapped to
// the export-only flag, since exporting is a capability rather than a type.
const exporterFilterValue = "exporter"

// EntityTypes lists the supported entity types in display order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityManufacturer,
		EntityDistributor,
		EntityRetailer,
		EntityWholesaler,
		EntityImporter,
		EntityTrader,
		EntitySupplier,
	}
}

// ParseEntityType normalises value and reports whether it names a known entity type.
func ParseEntityType(value string) (EntityType, bool) {
	candidate := EntityType(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range EntityTypes() {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

// Dictionary holds the vocabulary the parser matches queries against.
type Dictionary struct {
	EntityTerms   map[EntityType][]string `yaml:"entity_terms"`
	ExporterTerms []string                `yaml:"exporter_terms"`
	StopWords     []string                `yaml:"stop_words"`
	States        []string                `yaml:"states"`
	StateAliases  map[string]string       `yaml:"state_aliases"`
	// Rewrites maps a phrase to its replacement before any matching happens.
	Rewrites map[string]string `yaml:"rewrites"`
}

// DefaultDictionary returns the built-in vocabulary. Callers may mutate the
// result freely.
func DefaultDictionary() *Dictionary {
	return &Dictionary{
		EntityTerms: map[EntityType][]string{
			EntityManufacturer: {"manufacturer", "manufacturers", "manufacturing", "maker", "makers", "producer", "producers", "factory", "factories"},
			EntityDistributor:  {"distributor", "distributors", "distribution", "dealer", "dealers", "stockist", "stockists"},
			EntityRetailer:     {"retailer", "retailers", "retail", "shop", "shops", "store", "stores"},
			EntityWholesaler:   {"wholesaler", "wholesalers", "wholesale"},
			EntityImporter:     {"importer", "importers", "import", "imports", "importing"},
			EntityTrader:       {"trader", "traders", "trading"},
			EntitySupplier:     {"supplier", "suppliers", "vendor", "vendors"},
		},
		ExporterTerms: []string{"exporter", "exporters", "export", "exports", "exporting"},
		StopWords: []string{
			"a", "all", "an", "and", "any", "are", "around", "at", "based", "best", "by",
			"companies", "company", "find", "firm", "firms", "for", "from", "get", "give",
			"good", "i", "in", "india", "indian", "is", "list", "located", "looking", "me",
			"my", "near", "need", "of", "on", "or", "our", "show", "some", "that", "the",
			"their", "to", "top", "want", "we", "where", "which", "who", "with", "within",
		},
		States:       append([]string(nil), indianStates...),
		StateAliases: copyAliases(indianStateAliases),
		Rewrites: map[string]string{
			"mfg":                      "manufacturer",
			"mfr":                      "manufacturer",
			"mfrs":                     "manufacturers",
			"manufacture":              "manufacturer",
			"manufactures":             "manufacturers",
			"contract manufacturer":    "manufacturer",
			"contract manufacturers":   "manufacturers",
			"third party manufacturer": "manufacturer",
			"private label":            "manufacturer",
			"distributer":              "distributor",
			"distributers":             "distributors",
			"whole saler":              "wholesaler",
			"whole salers":             "wholesalers",
			"whole sale":               "wholesale",
			"whole-saler":              "wholesaler",
			"whole-salers":             "wholesalers",
			"whole-sale":               "wholesale",
			"export house":             "exporter",
			"export houses":            "exporters",
			"exporter and importer":    "exporter importer",
		},
	}
}

// LoadDictionary reads a YAML overlay and merges it on top of DefaultDictionary.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	if r == nil {
		return nil, errors.New("search: dictionary reader is nil")
	}

	var overlay Dictionary
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&overlay); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("search: decode dictionary: %w", err)
	}

	for entity := range overlay.EntityTerms {
		if _, ok := ParseEntityType(string(entity)); !ok {
			return nil, fmt.Errorf("search: unknown entity type %q in dictionary", entity)
		}
	}

	dict := DefaultDictionary()
	dict.Merge(&overlay)
	return dict, nil
}

// Merge appends other's vocabulary to d. Map entries in other win.
func (d *Dictionary) Merge(other *Dictionary) {
	if other == nil {
		return
	}
	if d.EntityTerms == nil {
		d.EntityTerms = make(map[EntityType][]string)
	}
	for entity, terms := range other.EntityTerms {
		d.EntityTerms[entity] = append(d.EntityTerms[entity], terms...)
	}
	d.ExporterTerms = append(d.ExporterTerms, other.ExporterTerms...)
	d.StopWords = append(d.StopWords, other.StopWords...)
	d.States = append(d.States, other.States...)

	if d.StateAliases == nil {
		d.StateAliases = make(map[string]string)
	}
	for alias, state := range other.StateAliases {
		d.StateAliases[alias] = state
	}
	if d.Rewrites == nil {
		d.Rewrites = make(map[string]string)
	}
	for from, to := range other.Rewrites {
		d.Rewrites[from] = to
	}
}

func copyAliases(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
