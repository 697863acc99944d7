package views

import (
	"slices"
	"strings"
)

const (
	MaxTags = 5
	// MinDescription matches the trimmedmin rule on question descriptions.
	MinDescription = 20
)

// TagSet holds the tags of a question form: trimmed, lower-cased, unique, at most MaxTags.
type TagSet struct {
	tags []string
}

func NewTagSet(tags ...string) TagSet {
	var ts TagSet
	for _, t := range tags {
		ts.Commit(t)
	}

	return ts
}

// Commit adds raw and reports whether it was added. Blank input, duplicates and
// input past the limit are refused.
func (ts *TagSet) Commit(raw string) bool {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" || len(ts.tags) >= MaxTags || slices.Contains(ts.tags, tag) {
		return false
	}

	ts.tags = append(ts.tags, tag)

	return true
}

func (ts *TagSet) Remove(tag string) {
	ts.tags = slices.DeleteFunc(ts.tags, func(t string) bool { return t == tag })
}

func (ts TagSet) Tags() []string {
	return slices.Clone(ts.tags)
}

func (ts TagSet) Len() int {
	return len(ts.tags)
}

func (ts TagSet) Full() bool {
	return len(ts.tags) >= MaxTags
}
