package search

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// likeEscape is the LIKE escape character. '!' behaves the same on sqlite,
// postgres and mysql, unlike the backslash.
const likeEscape = "!"

// Fields names the columns a Spec is matched against. Empty names disable
// the corresponding filter.
type Fields struct {
	Keyword        []string
	EntityType     string
	State          string
	Address        string
	City           string
	Exporter       string
	Verified       string
	Certifications string
}

// CompanyFields maps a Spec onto the companies table.
func CompanyFields() Fields {
	return Fields{
		Keyword:        []string{"companies.name", "companies.description", "companies.products", "companies.categories"},
		EntityType:     "companies.entity_type",
		State:          "companies.state",
		Address:        "companies.address",
		City:           "companies.city",
		Exporter:       "companies.is_exporter",
		Verified:       "companies.verified",
		Certifications: "companies.certification_index",
	}
}

// Where is a parameterised SQL condition.
type Where struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

// Empty reports whether the condition matches every row.
func (w Where) Empty() bool {
	return w.SQL == ""
}

// Apply adds the condition to db. An empty condition leaves db untouched.
func (w Where) Apply(db *gorm.DB) *gorm.DB {
	if w.Empty() {
		return db
	}
	return db.Where(w.SQL, w.Args...)
}

// String renders the condition with arguments inlined, for display only.
func (w Where) String() string {
	if w.Empty() {
		return ""
	}
	var b strings.Builder
	argIdx := 0
	for _, r := range w.SQL {
		if r == '?' && argIdx < len(w.Args) {
			switch v := w.Args[argIdx].(type) {
			case string:
				b.WriteString("'" + strings.ReplaceAll(v, "'", "''") + "'")
			default:
				fmt.Fprintf(&b, "%v", v)
			}
			argIdx++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Build composes the WHERE condition for spec: within a keyword the fields
// are OR'd, keyword groups and the remaining filters are AND'd, and the
// location becomes a sub-filter over state and address.
func Build(spec Spec, fields Fields) Where {
	var (
		clauses []string
		args    []any
	)

	if len(fields.Keyword) > 0 {
		for _, keyword := range spec.Keywords {
			pattern := containsPattern(keyword)
			ors := make([]string, len(fields.Keyword))
			for i, field := range fields.Keyword {
				ors[i] = likeExpr(field)
				args = append(args, pattern)
			}
			clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
		}
	}

	if spec.EntityType != "" && fields.EntityType != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) = ?", fields.EntityType))
		args = append(args, string(spec.EntityType))
	}

	if spec.Location != nil && spec.Location.State != "" && fields.State != "" {
		sub := fmt.Sprintf("LOWER(%s) = ?", fields.State)
		args = append(args, spec.Location.State)
		if fields.Address != "" {
			sub = "(" + sub + " OR " + likeExpr(fields.Address) + ")"
			args = append(args, containsPattern(spec.Location.State))
		}
		clauses = append(clauses, sub)
	}

	if spec.City != "" && fields.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) = ?", fields.City))
		args = append(args, spec.City)
	}

	if spec.ExportOnly && fields.Exporter != "" {
		clauses = append(clauses, fields.Exporter+" = ?")
		args = append(args, true)
	}

	if spec.Verified != nil && fields.Verified != "" {
		clauses = append(clauses, fields.Verified+" = ?")
		args = append(args, *spec.Verified)
	}

	if fields.Certifications != "" {
		for _, cert := range spec.Certifications {
			clauses = append(clauses, likeExpr(fields.Certifications))
			args = append(args, "%|"+escapeLike(cert)+"|%")
		}
	}

	return Where{SQL: strings.Join(clauses, " AND "), Args: args}
}

func likeExpr(field string) string {
	return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%s'", field, likeEscape)
}

func containsPattern(term string) string {
	return "%" + escapeLike(strings.ToLower(term)) + "%"
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return replacer.Replace(term)
}
