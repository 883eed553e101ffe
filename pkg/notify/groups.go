package notify

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// FallbackPrefix starts every hash-bucket group id
const FallbackPrefix = "group_other_"

// Rule is one ordered keyword rule. A rule matches a message when every
// AllOf keyword is present and, if AnyOf is non-empty, at least one AnyOf
// keyword is present. Keyword tests are case-sensitive.
type Rule struct {
	ID    string
	Name  string
	AnyOf []string
	AllOf []string
}

// Matches reports whether the rule applies to a message
func (r Rule) Matches(message string) bool {
	for _, kw := range r.AllOf {
		if !strings.Contains(message, kw) {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return len(r.AllOf) > 0
	}
	for _, kw := range r.AnyOf {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in topic rule table in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		{ID: "group_earthquake", Name: "🔔 地震情報", AnyOf: []string{"震度", "地震"}},
		{ID: "group_bar", Name: "🍺 Bar/開店情報", AnyOf: []string{"开店", "開店", "Bar", "NBB"}},
		{ID: "group_guild", Name: "⚔️ ギルド/公会", AnyOf: []string{"公会", "ギルド"}},
		{ID: "group_tourism", Name: "🗺️ 観光部", AnyOf: []string{"观光", "観光"}},
		{ID: "group_game", Name: "🎮 ゲーム情報", AnyOf: []string{"职业", "Achievement"}},
		{ID: "group_village", Name: "🏘️ 村/開村情報", AllOf: []string{"村"}, AnyOf: []string{"開", "开"}},
	}
}

// Classifier maps message text to a topic group id. First matching rule
// wins; messages no rule claims fall into a deterministic hash bucket so
// identical prefixes always land in the same group.
type Classifier struct {
	rules []Rule
	names map[string]string
}

// NewClassifier creates a classifier from an ordered rule table. Nil uses
// DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	names := make(map[string]string, len(rules))
	for _, r := range rules {
		if r.Name != "" {
			names[r.ID] = r.Name
		}
	}
	return &Classifier{rules: rules, names: names}
}

// GroupID returns the topic id for a message. Total and pure: identical
// input always yields the identical non-empty id.
func (c *Classifier) GroupID(message string) string {
	for _, r := range c.rules {
		if r.Matches(message) {
			return r.ID
		}
	}

	prefix := []rune(message)
	if len(prefix) > 20 {
		prefix = prefix[:20]
	}
	sum := md5.Sum([]byte(string(prefix)))
	return fmt.Sprintf("%s%x", FallbackPrefix, sum[:4])
}

// DisplayName resolves a group's name: user override, then the rule table
// name, then a synthesized fallback from the id's last 8 characters.
func (c *Classifier) DisplayName(groupID string, overrides map[string]string) string {
	if name, ok := overrides[groupID]; ok && name != "" {
		return name
	}
	if name, ok := c.names[groupID]; ok {
		return name
	}

	suffix := groupID
	if r := []rune(groupID); len(r) > 8 {
		suffix = string(r[len(r)-8:])
	}
	return fmt.Sprintf("📌 その他 (%s)", suffix)
}

// OrganizeByGroup buckets records by GroupID. Groups appear in first-seen
// order and members keep extraction order.
func (c *Classifier) OrganizeByGroup(records []Record, overrides map[string]string) []*Group {
	var groups []*Group
	index := make(map[string]*Group)

	for _, rec := range records {
		g, ok := index[rec.GroupID]
		if !ok {
			g = &Group{
				ID:          rec.GroupID,
				DisplayName: c.DisplayName(rec.GroupID, overrides),
			}
			index[rec.GroupID] = g
			groups = append(groups, g)
		}
		g.Members = append(g.Members, rec)
	}
	return groups
}
