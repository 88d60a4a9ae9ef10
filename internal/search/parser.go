package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	SourceQuery  = "query"
	SourceFilter = "filter"
)

// FilterContext carries explicit filters supplied next to the free text.
type FilterContext struct {
	EntityType     string
	State          string
	City           string
	Verified       *bool
	Certifications []string
	ExportOnly     bool
}

// Location is the state a search is narrowed to.
type Location struct {
	State   string `json:"state"`
	Display string `json:"display"`
	Source  string `json:"source"`
}

// Rewrite records a phrase replaced before matching.
type Rewrite struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Spec is the structured form of a search query.
type Spec struct {
	Raw              string     `json:"raw"`
	Tokens           []string   `json:"tokens"`
	Keywords         []string   `json:"keywords"`
	EntityType       EntityType `json:"entity_type,omitempty"`
	EntityTypeSource string     `json:"entity_type_source,omitempty"`
	Location         *Location  `json:"location,omitempty"`
	City             string     `json:"city,omitempty"`
	ExportOnly       bool       `json:"export_only"`
	Verified         *bool      `json:"verified,omitempty"`
	Certifications   []string   `json:"certifications,omitempty"`
	Rewrites         []Rewrite  `json:"rewrites,omitempty"`
}

// Empty reports whether the spec matches every company.
func (s Spec) Empty() bool {
	return len(s.Keywords) == 0 &&
		s.EntityType == "" &&
		s.Location == nil &&
		s.City == "" &&
		!s.ExportOnly &&
		s.Verified == nil &&
		len(s.Certifications) == 0
}

// CacheKey returns a stable key identifying the filters of the spec. Keyword
// order does not change the key since keyword groups are AND'd.
func (s Spec) CacheKey() string {
	keywords := append([]string(nil), s.Keywords...)
	sort.Strings(keywords)
	certs := append([]string(nil), s.Certifications...)
	sort.Strings(certs)

	var b strings.Builder
	b.WriteString("k=")
	b.WriteString(strings.Join(keywords, ","))
	b.WriteString("|e=")
	b.WriteString(string(s.EntityType))
	b.WriteString("|s=")
	if s.Location != nil {
		b.WriteString(s.Location.State)
	}
	b.WriteString("|c=")
	b.WriteString(s.City)
	b.WriteString("|x=")
	b.WriteString(strconv.FormatBool(s.ExportOnly))
	b.WriteString("|v=")
	if s.Verified != nil {
		b.WriteString(strconv.FormatBool(*s.Verified))
	}
	b.WriteString("|cert=")
	b.WriteString(strings.Join(certs, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return "search:" + hex.EncodeToString(sum[:16])
}

// Parser turns free text into a Spec. It is immutable after construction and
// safe for concurrent use.
type Parser struct {
	entityByTerm  map[string]EntityType
	exporterTerms map[string]struct{}
	stopWords     map[string]struct{}
	states        map[string]string
	maxStateLen   int
	rewrites      map[string][]string
	maxRewriteLen int
}

// NewParser compiles dict into lookup tables. A nil dict uses DefaultDictionary.
func NewParser(dict *Dictionary) *Parser {
	if dict == nil {
		dict = DefaultDictionary()
	}

	p := &Parser{
		entityByTerm:  make(map[string]EntityType),
		exporterTerms: toSet(dict.ExporterTerms),
		stopWords:     toSet(dict.StopWords),
		states:        make(map[string]string),
		rewrites:      make(map[string][]string),
	}

	// Iterate in a fixed order so a term listed under two types resolves the
	// same way on every run.
	for _, entity := range EntityTypes() {
		for _, term := range dict.EntityTerms[entity] {
			term = normaliseTerm(term)
			if term == "" {
				continue
			}
			if _, exists := p.entityByTerm[term]; !exists {
				p.entityByTerm[term] = entity
			}
		}
	}

	for _, state := range dict.States {
		state = normaliseTerm(state)
		if state == "" {
			continue
		}
		p.addState(state, state)
	}
	for alias, state := range dict.StateAliases {
		alias, state = normaliseTerm(alias), normaliseTerm(state)
		if alias == "" || state == "" {
			continue
		}
		p.addState(alias, state)
	}

	for from, to := range dict.Rewrites {
		from = normaliseTerm(from)
		replacement := strings.Fields(normaliseTerm(to))
		if from == "" || len(replacement) == 0 {
			continue
		}
		p.rewrites[from] = replacement
		if n := len(strings.Fields(from)); n > p.maxRewriteLen {
			p.maxRewriteLen = n
		}
	}

	return p
}

func (p *Parser) addState(phrase, canonical string) {
	p.states[phrase] = canonical
	if n := len(strings.Fields(phrase)); n > p.maxStateLen {
		p.maxStateLen = n
	}
}

// Parse builds the Spec for query, then applies fc on top.
// Parsing never fails; unmatched input yields an empty Spec.
func (p *Parser) Parse(query string, fc FilterContext) Spec {
	spec := Spec{Raw: query}

	tokens, rewrites := p.rewrite(tokenize(query))
	spec.Tokens = tokens
	spec.Rewrites = rewrites
	consumed := make([]bool, len(tokens))

	p.detectLocation(&spec, tokens, consumed)

	for i, token := range tokens {
		if consumed[i] {
			continue
		}
		if _, ok := p.exporterTerms[token]; ok {
			spec.ExportOnly = true
			consumed[i] = true
			continue
		}
		if entity, ok := p.entityByTerm[token]; ok {
			if spec.EntityType == "" {
				spec.EntityType = entity
				spec.EntityTypeSource = SourceQuery
			}
			consumed[i] = true
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	for i, token := range tokens {
		if consumed[i] || !p.isKeyword(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		spec.Keywords = append(spec.Keywords, token)
	}

	p.applyContext(&spec, fc)
	return spec
}

// CanonicalState resolves a state name or alias to its canonical form.
func (p *Parser) CanonicalState(name string) (string, bool) {
	state, ok := p.states[strings.Join(tokenize(name), " ")]
	return state, ok
}

// DisplayName title-cases a canonical location for presentation.
func (p *Parser) DisplayName(value string) string {
	words := strings.Fields(cases.Title(language.English).String(value))
	for i, word := range words {
		if i > 0 && word == "And" {
			words[i] = "and"
		}
	}
	return strings.Join(words, " ")
}

// detectLocation consumes every gazetteer phrase, longest first at each
// position. The first state found becomes the location.
func (p *Parser) detectLocation(spec *Spec, tokens []string, consumed []bool) {
	for i := 0; i < len(tokens); {
		matched := 0
		for n := min(p.maxStateLen, len(tokens)-i); n > 0; n-- {
			state, ok := p.states[strings.Join(tokens[i:i+n], " ")]
			if !ok {
				continue
			}
			if spec.Location == nil {
				spec.Location = &Location{
					State:   state,
					Display: p.DisplayName(state),
					Source:  SourceQuery,
				}
			}
			for j := i; j < i+n; j++ {
				consumed[j] = true
			}
			matched = n
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
}

func (p *Parser) rewrite(tokens []string) ([]string, []Rewrite) {
	if p.maxRewriteLen == 0 {
		return tokens, nil
	}

	out := make([]string, 0, len(tokens))
	var applied []Rewrite
	for i := 0; i < len(tokens); {
		matched := false
		for n := min(p.maxRewriteLen, len(tokens)-i); n > 0; n-- {
			phrase := strings.Join(tokens[i:i+n], " ")
			replacement, ok := p.rewrites[phrase]
			if !ok {
				continue
			}
			out = append(out, replacement...)
			applied = append(applied, Rewrite{From: phrase, To: strings.Join(replacement, " ")})
			i += n
			matched = true
			break
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return out, applied
}

func (p *Parser) isKeyword(token string) bool {
	if utf8.RuneCountInString(token) < 2 {
		return false
	}
	if _, stop := p.stopWords[token]; stop {
		return false
	}
	return strings.IndexFunc(token, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func (p *Parser) applyContext(spec *Spec, fc FilterContext) {
	if raw := strings.ToLower(strings.TrimSpace(fc.EntityType)); raw != "" {
		if raw == exporterFilterValue || raw == exporterFilterValue+"s" {
			spec.ExportOnly = true
		} else if entity, ok := ParseEntityType(raw); ok {
			spec.EntityType = entity
			spec.EntityTypeSource = SourceFilter
		}
	}

	if raw := strings.TrimSpace(fc.State); raw != "" {
		state, ok := p.CanonicalState(raw)
		if !ok {
			state = strings.ToLower(raw)
		}
		spec.Location = &Location{
			State:   state,
			Display: p.DisplayName(state),
			Source:  SourceFilter,
		}
	}

	if city := strings.ToLower(strings.TrimSpace(fc.City)); city != "" {
		spec.City = city
	}

	if fc.ExportOnly {
		spec.ExportOnly = true
	}
	if fc.Verified != nil {
		verified := *fc.Verified
		spec.Verified = &verified
	}

	seen := make(map[string]struct{}, len(fc.Certifications))
	for _, cert := range fc.Certifications {
		cert = strings.ToLower(strings.TrimSpace(cert))
		if cert == "" {
			continue
		}
		if _, dup := seen[cert]; dup {
			continue
		}
		seen[cert] = struct{}{}
		spec.Certifications = append(spec.Certifications, cert)
	}
}

// tokenize lowercases query, drops apostrophes and splits on every rune that
// is not a letter, combining mark, digit, '&' or '-'. Edge hyphens are trimmed.
func tokenize(query string) []string {
	var b strings.Builder
	b.Grow(len(query))
	for _, r := range strings.ToLower(query) {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r), r == '&', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, field := range fields {
		field = strings.Trim(field, "-")
		if field != "" {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func normaliseTerm(term string) string {
	return strings.Join(tokenize(term), " ")
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = normaliseTerm(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
