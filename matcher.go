// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// pathMatcher holds compiled path rules.
type pathMatcher struct {
	matcher *pathrules.Matcher
}

var (
	// hiddenRules match dot-prefixed names at any depth.
	hiddenRules = []pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: ".*"},
	}
	// pluginBinaryRules match native plugin modules routed by bitness.
	pluginBinaryRules = []pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "*.dll"},
	}
)

// newPathMatcher compiles path rules with case-insensitive allow-list semantics.
// Empty rule set yields a nil matcher which matches nothing.
func newPathMatcher(rules []pathrules.Rule) (*pathMatcher, error) {
	rules = normalizeRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		return nil, fmt.Errorf("compile path rules: %w", err)
	}

	return &pathMatcher{matcher: matcher}, nil
}

// mustPathMatcher compiles built-in rules.
func mustPathMatcher(rules []pathrules.Rule) *pathMatcher {
	m, err := newPathMatcher(rules)
	if err != nil {
		panic(err)
	}

	return m
}

// normalizeRules normalizes rule patterns and drops empty patterns.
func normalizeRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is included by the rules.
func (m *pathMatcher) Match(path string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, isDir)
}
