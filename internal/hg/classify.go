package hg

import (
	"regexp"
	"strings"
)

// summaryRule maps a summary pattern to a change type. extract returns the
// summary text kept on the change set from the submatches.
type summaryRule struct {
	pattern    *regexp.Regexp
	changeType func(m []string) ChangeType
	extract    func(m []string) string
}

var prefixTypes = map[string]ChangeType{
	"f": ChangeTypeFeature,
	"s": ChangeTypeSpecification,
	"b": ChangeTypeBugfix,
	"r": ChangeTypeRefactoring,
}

// summaryRules are tried in order; the first match wins.
var summaryRules = []summaryRule{
	{
		pattern: regexp.MustCompile(`^([FSBRfsbr]):[ \t](.*)`),
		changeType: func(m []string) ChangeType {
			return prefixTypes[strings.ToLower(m[1])]
		},
		extract: func(m []string) string { return m[2] },
	},
	{
		pattern:    regexp.MustCompile(`^Merge`),
		changeType: func([]string) ChangeType { return ChangeTypeMerge },
		extract:    func([]string) string { return "" },
	},
	{
		pattern:    regexp.MustCompile(`^(Added|Removed)[ \t]tag[ \t]([v|r|t]\d{1,3}\.\d{1,3}\.\d{1,5}\.\d{1,5}(\.b\d{1,5})?)([ \t]for[ \t]changeset[ \t]\w{12})`),
		changeType: func([]string) ChangeType { return ChangeTypeSystem },
		extract:    func([]string) string { return "" },
	},
}

// ClassifySummary derives the change type from a summary line and returns the
// summary text to keep. Unrecognized summaries are refactorings kept verbatim.
func ClassifySummary(summary string) (ChangeType, string) {
	for _, rule := range summaryRules {
		if m := rule.pattern.FindStringSubmatch(summary); m != nil {
			return rule.changeType(m), rule.extract(m)
		}
	}
	return ChangeTypeRefactoring, summary
}
