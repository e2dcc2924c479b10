package rulefile

import (
	"github.com/samber/lo"

	"github.com/whit3rabbit/textmixer/internal/engine"
	"github.com/whit3rabbit/textmixer/internal/rule"
)

// Report is the result of validating a rule file.
type Report struct {
	Kind        engine.Kind
	Rules       int
	Ambiguities []string
	Overlaps    []string
}

// Valid reports whether the table satisfies the ambiguity invariant.
// Overlaps are warnings: they only affect the string and simple engines.
func (r Report) Valid() bool {
	return len(r.Ambiguities) == 0
}

// Validate builds the document's table and checks it. A build failure
// (duplicate keys, bad operation names) is returned as an error; ambiguity
// is reported, not raised.
func (f *File) Validate() (Report, error) {
	if err := f.Check(); err != nil {
		return Report{}, err
	}
	kind, _ := f.Kind()
	report := Report{Kind: kind}

	if kind == engine.KindChar {
		table, err := f.CharTable()
		if err != nil {
			return Report{}, err
		}
		report.Rules = table.Len()
		report.Ambiguities = lo.Map(rule.Ambiguities(table), func(a rule.Ambiguity[rune], _ int) string {
			return a.String()
		})
		return report, nil
	}

	table, err := f.StringTable()
	if err != nil {
		return Report{}, err
	}
	report.Rules = table.Len()
	report.Ambiguities = lo.Map(rule.Ambiguities(table), func(a rule.Ambiguity[string], _ int) string {
		return a.String()
	})
	report.Overlaps = lo.Map(rule.Overlaps(table), func(o rule.Overlap, _ int) string {
		return o.String()
	})
	return report, nil
}

// FromTable converts a string table into a rule file document.
func FromTable(kind engine.Kind, t *rule.Table[string]) *File {
	if kind == engine.KindSimple {
		return &File{Engine: string(kind), Map: tableMap(t)}
	}
	return &File{
		Engine: string(kind),
		Rules: lo.Map(t.Rules(), func(r rule.Rule[string], _ int) Entry {
			e := Entry{Key: string(r.Key()), Replacement: r.Replacement()}
			if r.Operation() != rule.None {
				e.Operation = r.Operation().String()
				e.Indexes = r.Indexes()
			}
			return e
		}),
	}
}
