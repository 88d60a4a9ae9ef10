package search

// Explanation pairs a parsed Spec with the condition it compiles to.
type Explanation struct {
	Spec     Spec   `json:"spec"`
	Where    Where  `json:"where"`
	Rendered string `json:"rendered"`
	CacheKey string `json:"cache_key"`
}

// Explain parses query and reports the resulting condition over fields.
func (p *Parser) Explain(query string, fc FilterContext, fields Fields) Explanation {
	spec := p.Parse(query, fc)
	where := Build(spec, fields)
	return Explanation{
		Spec:     spec,
		Where:    where,
		Rendered: where.String(),
		CacheKey: spec.CacheKey(),
	}
}
