package dsl

import (
	"regexp"
	"time"
)

//Matcher is a predicate over Spans.  Live output and the report both select spans through Matchers.
type Matcher interface {
	Match(span Span) bool
}

type MatcherFunc func(Span) bool

func (m MatcherFunc) Match(span Span) bool {
	return m(span)
}

func True() Matcher {
	return MatcherFunc(func(span Span) bool {
		return true
	})
}

func And(matchers ...Matcher) Matcher {
	return MatcherFunc(func(span Span) bool {
		for _, matcher := range matchers {
			if !matcher.Match(span) {
				return false
			}
		}
		return true
	})
}

//RegExpMatcher matches spans whose Getter value is a string matching re
func RegExpMatcher(getter Getter, re *regexp.Regexp) Matcher {
	return MatcherFunc(func(span Span) bool {
		value, ok := getter.Get(span)
		if !ok {
			return false
		}
		stringValue, ok := value.(string)
		if !ok {
			return false
		}
		return re.MatchString(stringValue)
	})
}

//MatchIdentity matches spans whose identity matches re.  A nil re matches everything.
func MatchIdentity(re *regexp.Regexp) Matcher {
	if re == nil {
		return True()
	}
	return RegExpMatcher(GetIdentity, re)
}

//MatchMinDuration matches spans that took at least min.  A zero (or negative) min matches everything, clock-skewed spans included.
func MatchMinDuration(min time.Duration) Matcher {
	if min <= 0 {
		return True()
	}
	return MatcherFunc(func(span Span) bool {
		return span.Elapsed >= min
	})
}
