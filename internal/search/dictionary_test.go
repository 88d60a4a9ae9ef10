package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDictionaryMergesOverlay(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader(`
entity_terms:
  manufacturer: [formulator, formulators]
stop_words: [supplements]
state_aliases:
  kathiawar: gujarat
rewrites:
  "third-party": manufacturer
`))
	require.NoError(t, err)

	parser := NewParser(dict)

	spec := parser.Parse("formulators of supplements in Kathiawar", FilterContext{})
	require.Equal(t, EntityManufacturer, spec.EntityType)
	require.Empty(t, spec.Keywords)
	require.NotNil(t, spec.Location)
	require.Equal(t, "gujarat", spec.Location.State)

	spec = parser.Parse("third-party shilajit", FilterContext{})
	require.Equal(t, EntityManufacturer, spec.EntityType)
	require.Equal(t, []string{"shilajit"}, spec.Keywords)

	// Defaults stay in place.
	spec = parser.Parse("maker of ghee", FilterContext{})
	require.Equal(t, EntityManufacturer, spec.EntityType)
}

func TestLoadDictionaryRejectsUnknownEntityType(t *testing.T) {
	_, err := LoadDictionary(strings.NewReader("entity_terms:\n  smuggler: [smugglers]\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown entity type")
}

func TestLoadDictionaryRejectsUnknownField(t *testing.T) {
	_, err := LoadDictionary(strings.NewReader("synonyms:\n  a: b\n"))
	require.Error(t, err)
}

func TestLoadDictionaryEmptyInputUsesDefaults(t *testing.T) {
	dict, err := LoadDictionary(strings.NewReader(""))
	require.NoError(t, err)
	require.ElementsMatch(t, DefaultDictionary().States, dict.States)

	_, err = LoadDictionary(nil)
	require.Error(t, err)
}

func TestDefaultDictionaryIsIndependentCopy(t *testing.T) {
	first := DefaultDictionary()
	first.States[0] = "atlantis"
	first.StateAliases["atl"] = "atlantis"

	second := DefaultDictionary()
	require.NotEqual(t, "atlantis", second.States[0])
	require.NotContains(t, second.StateAliases, "atl")
}
