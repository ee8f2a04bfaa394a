package services

import (
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the names written as @name in body, in order of
// first appearance and without duplicates. Matching is case-sensitive.
func ExtractMentions(body string) []string {
	var names []string
	for _, m := range mentionPattern.FindAllStringSubmatch(body, -1) {
		names = append(names, m[1])
	}
	return MergeNames(names)
}

// MergeNames concatenates lists, dropping empty entries and repeats.
func MergeNames(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// ParseTags splits a space separated tag string, keeping the first
// occurrence of each tag.
func ParseTags(raw string) []string {
	return MergeNames(strings.Fields(raw))
}
