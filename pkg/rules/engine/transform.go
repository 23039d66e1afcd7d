package engine

import (
	"regexp"
	"time"

	"github.com/ncruces/go-strftime"

	"rulegate/pkg/rules"
)

// dateInputLayout accepts US-style MM/DD/YYYY dates, with or without
// zero padding.
const dateInputLayout = "1/2/2006"

// defaultDateFormat is the strftime output format applied when a date
// transform rule does not configure one.
const defaultDateFormat = "%Y-%m-%d"

// applyDateTransform rewrites each date match according to the rule's
// strftime format parameter. Matches that do not parse as MM/DD/YYYY are
// left in place and produce no result entry.
//
// Format strings are kept in strftime notation so documents written by
// other implementations of this format keep working.
func (d *ActionDispatcher) applyDateTransform(rule *rules.Rule, matcher *regexp.Regexp, text string) *Outcome {
	format := rule.StringParam("format", defaultDateFormat)
	out := &Outcome{}

	out.Text = matcher.ReplaceAllStringFunc(text, func(match string) string {
		parsed, err := time.Parse(dateInputLayout, match)
		if err != nil {
			return match
		}

		transformed := strftime.Format(format, parsed)
		out.Results = append(out.Results, Result{
			RuleID:        rule.ID,
			RuleName:      rule.Name,
			Action:        ResultTransform,
			Original:      match,
			Transformed:   transformed,
			TransformType: "date",
		})
		return transformed
	})

	return out
}
