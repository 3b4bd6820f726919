package selection

import (
	"strings"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

// OptionSource resolves parent options and the dependent options scoped to a parent.
type OptionSource interface {
	Parents() []string
	Children(parent, group string) []string
}

// Node is one parent option with its dependent lists keyed by group.
type Node struct {
	Name     string
	Children map[string][]string
}

// Catalog is a static OptionSource.
type Catalog []Node

// Parents implements OptionSource.
func (c Catalog) Parents() []string {
	out := make([]string, 0, len(c))
	for _, n := range c {
		out = append(out, n.Name)
	}
	return out
}

// Children implements OptionSource. Parent lookup ignores case.
func (c Catalog) Children(parent, group string) []string {
	for _, n := range c {
		if strings.EqualFold(n.Name, parent) {
			return n.Children[group]
		}
	}
	return nil
}

// Cascade couples a parent selection to dependent selections whose options
// are scoped to the chosen parents. Changing the parents recomputes the
// dependent options and clears dependent values that fell out of scope.
type Cascade struct {
	parentGroup string
	groups      []string
	source      OptionSource

	parents    *Set
	dependents map[string]*Set
	custom     map[string]map[string]struct{}
	options    map[string][]string
}

// NewCascade builds a cascade with the named parent group and dependent groups.
func NewCascade(parentGroup string, source OptionSource, groups ...string) *Cascade {
	c := &Cascade{
		parentGroup: parentGroup,
		groups:      append([]string(nil), groups...),
		source:      source,
		parents:     NewSet(),
		dependents:  make(map[string]*Set, len(groups)),
		custom:      make(map[string]map[string]struct{}, len(groups)),
		options:     make(map[string][]string, len(groups)),
	}
	for _, g := range groups {
		c.dependents[g] = NewSet()
		c.custom[g] = make(map[string]struct{})
	}
	return c
}

// ParentGroup returns the parent group name.
func (c *Cascade) ParentGroup() string {
	return c.parentGroup
}

// Groups returns the dependent group names.
func (c *Cascade) Groups() []string {
	return append([]string(nil), c.groups...)
}

// HasGroup reports whether group is the parent or a dependent group.
func (c *Cascade) HasGroup(group string) bool {
	if group == c.parentGroup {
		return true
	}
	_, ok := c.dependents[group]
	return ok
}

// Load seeds the selections without pruning values chosen earlier. Values not
// found in the recomputed options are kept as custom entries.
func (c *Cascade) Load(parents []string, dependents map[string][]string) {
	c.parents.Replace(parents)
	c.recompute()
	for _, g := range c.groups {
		set := c.dependents[g]
		set.Replace(dependents[g])
		c.custom[g] = make(map[string]struct{})
		allowed := foldIndex(c.options[g])
		for _, v := range set.Values() {
			if _, ok := allowed[strings.ToLower(v)]; !ok {
				c.custom[g][v] = struct{}{}
			}
		}
	}
}

// Add selects value in group. Dependent values must be among the current options.
func (c *Cascade) Add(group, value string) error {
	if group == c.parentGroup {
		name, ok := canonical(c.source.Parents(), value)
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown "+group+" option: "+value)
		}
		if c.parents.Add(name) {
			c.cascade()
		}
		return nil
	}
	set, ok := c.dependents[group]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown group: "+group)
	}
	name, found := canonical(c.options[group], value)
	if !found {
		return appErrors.Clone(appErrors.ErrValidation, "unknown "+group+" option: "+value)
	}
	set.Add(name)
	return nil
}

// AddCustom selects a free-text value outside the canonical options.
func (c *Cascade) AddCustom(group, value string) error {
	if group == c.parentGroup {
		if err := c.parents.AddCustom(value); err != nil {
			return err
		}
		c.cascade()
		return nil
	}
	set, ok := c.dependents[group]
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown group: "+group)
	}
	if err := set.AddCustom(value); err != nil {
		return err
	}
	c.custom[group][strings.TrimSpace(value)] = struct{}{}
	return nil
}

// Remove deselects value in group, ignoring case like Add. Removing a parent cascades.
func (c *Cascade) Remove(group, value string) bool {
	if group == c.parentGroup {
		name, ok := selected(c.parents, value)
		if ok && c.parents.Remove(name) {
			c.cascade()
			return true
		}
		return false
	}
	set, ok := c.dependents[group]
	if !ok {
		return false
	}
	name, ok := selected(set, value)
	if !ok {
		return false
	}
	delete(c.custom[group], name)
	return set.Remove(name)
}

// Selected returns the chosen values of group in insertion order.
func (c *Cascade) Selected(group string) []string {
	if group == c.parentGroup {
		return c.parents.Values()
	}
	if set, ok := c.dependents[group]; ok {
		return set.Values()
	}
	return nil
}

// Options returns the selectable values of group.
func (c *Cascade) Options(group string) []string {
	if group == c.parentGroup {
		return c.source.Parents()
	}
	return append([]string(nil), c.options[group]...)
}

// SearchOptions narrows Options(group) by query.
func (c *Cascade) SearchOptions(group, query string) []string {
	return Search(c.Options(group), query)
}

// Snapshot returns every selection keyed by group name.
func (c *Cascade) Snapshot() map[string][]string {
	out := make(map[string][]string, len(c.groups)+1)
	out[c.parentGroup] = c.parents.Values()
	for _, g := range c.groups {
		out[g] = c.dependents[g].Values()
	}
	return out
}

func (c *Cascade) cascade() {
	c.recompute()
	for _, g := range c.groups {
		allowed := foldIndex(c.options[g])
		custom := c.custom[g]
		c.dependents[g].Retain(func(v string) bool {
			if _, ok := custom[v]; ok {
				return true
			}
			_, ok := allowed[strings.ToLower(v)]
			return ok
		})
	}
}

func (c *Cascade) recompute() {
	for _, g := range c.groups {
		seen := make(map[string]struct{})
		var union []string
		for _, p := range c.parents.Values() {
			for _, opt := range c.source.Children(p, g) {
				key := strings.ToLower(strings.TrimSpace(opt))
				if key == "" {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				union = append(union, strings.TrimSpace(opt))
			}
		}
		c.options[g] = union
	}
}

func foldIndex(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(v)] = struct{}{}
	}
	return out
}

// selected returns the stored spelling of value in set. Exact matches win.
func selected(set *Set, value string) (string, bool) {
	if set.Contains(value) {
		return strings.TrimSpace(value), true
	}
	return canonical(set.Values(), value)
}

// canonical returns the option spelling matching value, ignoring case.
func canonical(values []string, value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return v, true
		}
	}
	return "", false
}
