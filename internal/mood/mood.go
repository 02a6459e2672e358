// package mood classifies free-text mood descriptions into discrete mode tags
package mood

import (
	"fmt"
	"strings"
)

// Tag is the discrete mode sent with a generation request to bias playlist
// parameters. Values match the backend's accepted mode literals.
type Tag string

const (
	TagSleep  Tag = "sleep"
	TagFocus  Tag = "focus"
	TagGym    Tag = "gym"
	TagCalm   Tag = "calm"
	TagRage   Tag = "rage_release"
	TagUplift Tag = "uplift"
)

// Tags lists every backend-accepted mode tag.
func Tags() []Tag {
	return []Tag{TagUplift, TagFocus, TagCalm, TagGym, TagSleep, TagRage}
}

// Valid reports whether t is a backend-accepted mode tag.
func (t Tag) Valid() bool {
	switch t {
	case TagSleep, TagFocus, TagGym, TagCalm, TagRage, TagUplift:
		return true
	}
	return false
}

// ParseTag converts user input (a --mode flag value) into a Tag.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return t, nil
}

// rule pairs a tag with the phrases that select it.
type rule struct {
	tag      Tag
	keywords []string
}

// rules are evaluated in order and the first match wins. The order is the
// tie-break policy: text mentioning both "tired" and "stressed" lands on
// sleep because sleep is tested first. Reordering changes classification
// results, so treat the sequence as part of the contract.
var rules = []rule{
	{TagSleep, []string{"sleep", "sleepy", "tired", "exhausted", "insomnia", "bedtime", "wind down", "drowsy"}},
	{TagFocus, []string{"focus", "concentrate", "concentration", "study", "studying", "deep work", "work session", "productive", "homework"}},
	{TagGym, []string{"gym", "workout", "work out", "weights", "cardio", "exercise", "training"}},
	{TagCalm, []string{"calm", "anxious", "anxiety", "stress", "overwhelmed", "relax", "unwind", "breathe", "panic", "nervous"}},
	{TagRage, []string{"angry", "anger", "rage", "furious", "pissed", "scream", "frustrated", "fed up"}},
}

// Classify maps free text to exactly one Tag using ordered case-insensitive
// substring tests. Text matching no rule returns [TagUplift].
func Classify(text string) Tag {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.tag
			}
		}
	}
	return TagUplift
}

// Combine joins the current and goal mood fields the way the submission form
// does before classification.
func Combine(current, goal string) string {
	return strings.TrimSpace(strings.TrimSpace(current) + " " + strings.TrimSpace(goal))
}
