// Package fields provides the static field catalog for catalog records:
// which fields are set-valued, how important each field is, whether it is
// critical or supplemental for curation, how it should be laid out for
// editing, and why it matters in plain language.
//
// The catalog is an immutable lookup table built once at process start and
// passed by reference; it has no side effects and no mutable global state.
package fields

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Group classifies a field for wizard-based curation sessions.
type Group string

// String returns the string representation of a Group.
func (g Group) String() string {
	return string(g)
}

// Field groups.
const (
	GroupCritical     Group = "critical"     // Algorithm-blocking fields
	GroupSupplemental Group = "supplemental" // Nice-to-have fields
	GroupNone         Group = "none"         // Everything else
)

// Layout is a display-layout hint for field editors.
type Layout string

// String returns the string representation of a Layout.
func (l Layout) String() string {
	return string(l)
}

// Field layouts.
const (
	LayoutCompact  Layout = "compact"
	LayoutLongForm Layout = "long_form"
)

// Descriptor is the static metadata for one catalog field.
type Descriptor struct {
	Name        string `yaml:"name"`
	ArrayValued bool   `yaml:"array_valued,omitempty"`
	Weight      int    `yaml:"weight,omitempty"`
	Group       Group  `yaml:"group,omitempty"`
	Layout      Layout `yaml:"layout,omitempty"`
	Explanation string `yaml:"explanation,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`

	// Research prompt context, used when asking the research
	// collaborator about this field.
	SearchTemplate string `yaml:"search_template,omitempty"`
	ExpectedFormat string `yaml:"expected_format,omitempty"`

	// Trusted marks stable fields whose existing non-empty values are
	// accepted without a research call.
	Trusted bool `yaml:"trusted,omitempty"`
}

// Catalog is the immutable field metadata table.
type Catalog struct {
	descriptors  map[string]Descriptor
	arrayFields  map[string]bool
	longForm     map[string]bool
	systemFields map[string]bool
}

// longFormSuffixes are name patterns that force long-form layout for
// fields without an explicit layout entry.
var longFormSuffixes = []string{"_description", "_overview"}

// longFormNames are exact names that force long-form layout.
var longFormNames = []string{"notes", "remarks", "description"}

var titleCaser = cases.Title(language.English)

// New builds a catalog from the compiled-in defaults, then applies options.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		descriptors:  make(map[string]Descriptor, len(defaultDescriptors)),
		arrayFields:  make(map[string]bool, len(defaultArrayFields)),
		longForm:     make(map[string]bool),
		systemFields: make(map[string]bool, len(systemFields)),
	}

	for _, name := range defaultArrayFields {
		c.arrayFields[name] = true
	}
	for _, name := range systemFields {
		c.systemFields[name] = true
	}
	for _, d := range defaultDescriptors {
		c.add(d)
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustNew builds a catalog from defaults and panics on option errors.
// Intended for package-level construction with static options.
func MustNew(opts ...Option) *Catalog {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) add(d Descriptor) {
	if d.ArrayValued {
		c.arrayFields[d.Name] = true
	}
	if d.Layout == LayoutLongForm {
		c.longForm[d.Name] = true
	}
	if existing, ok := c.descriptors[d.Name]; ok {
		c.descriptors[d.Name] = mergeDescriptor(existing, d)
		return
	}
	c.descriptors[d.Name] = d
}

// mergeDescriptor overlays the non-zero parts of an override onto a base
// descriptor.
func mergeDescriptor(base, override Descriptor) Descriptor {
	if override.ArrayValued {
		base.ArrayValued = true
	}
	if override.Weight != 0 {
		base.Weight = override.Weight
	}
	if override.Group != "" {
		base.Group = override.Group
	}
	if override.Layout != "" {
		base.Layout = override.Layout
	}
	if override.Explanation != "" {
		base.Explanation = override.Explanation
	}
	if override.DisplayName != "" {
		base.DisplayName = override.DisplayName
	}
	if override.SearchTemplate != "" {
		base.SearchTemplate = override.SearchTemplate
	}
	if override.ExpectedFormat != "" {
		base.ExpectedFormat = override.ExpectedFormat
	}
	if override.Trusted {
		base.Trusted = true
	}
	return base
}

// Descriptor returns the full descriptor for a field and whether the field
// has an explicit catalog entry.
func (c *Catalog) Descriptor(name string) (Descriptor, bool) {
	d, ok := c.descriptors[name]
	return d, ok
}

// IsArrayField reports whether a field's value is logically a set of
// string tags (a Postgres text[] column in the original schema).
func (c *Catalog) IsArrayField(name string) bool {
	return c.arrayFields[name]
}

// IsSystemField reports whether a field is bookkeeping metadata (identity,
// creation and modification stamps) that curation must never touch.
func (c *Catalog) IsSystemField(name string) bool {
	return c.systemFields[name]
}

// IsTrusted reports whether an existing non-empty value for the field
// should be accepted without research.
func (c *Catalog) IsTrusted(name string) bool {
	return c.descriptors[name].Trusted
}

// Weight returns the priority weight for a field. Unlisted fields weigh 1.
func (c *Catalog) Weight(name string) int {
	if d, ok := c.descriptors[name]; ok && d.Weight > 0 {
		return d.Weight
	}
	return 1
}

// Group returns the curation group for a field. Unlisted fields are
// GroupNone.
func (c *Catalog) Group(name string) Group {
	if d, ok := c.descriptors[name]; ok && d.Group != "" {
		return d.Group
	}
	return GroupNone
}

// Layout returns the display-layout hint for a field. The explicit set is
// checked first, then suffix and equality patterns; everything else is
// compact.
func (c *Catalog) Layout(name string) Layout {
	if c.longForm[name] {
		return LayoutLongForm
	}
	if d, ok := c.descriptors[name]; ok && d.Layout != "" {
		return d.Layout
	}
	for _, suffix := range longFormSuffixes {
		if strings.HasSuffix(name, suffix) {
			return LayoutLongForm
		}
	}
	for _, exact := range longFormNames {
		if name == exact {
			return LayoutLongForm
		}
	}
	return LayoutCompact
}

// Explanation returns the plain-language reason this field matters, used
// to help non-technical admins understand what needs fixing.
func (c *Catalog) Explanation(name string) string {
	if d, ok := c.descriptors[name]; ok && d.Explanation != "" {
		return d.Explanation
	}
	return "This field helps provide complete information about the record"
}

// DisplayName returns a human-readable name for a field with the column
// name in parentheses, e.g. "Cost Of Living (cost_of_living_usd)".
func (c *Catalog) DisplayName(name string) string {
	human := c.descriptors[name].DisplayName
	if human == "" {
		human = titleCaser.String(strings.ReplaceAll(name, "_", " "))
	}
	return human + " (" + name + ")"
}

// SearchTemplate returns the research question template for a field, or
// "" when none is configured.
func (c *Catalog) SearchTemplate(name string) string {
	return c.descriptors[name].SearchTemplate
}

// ExpectedFormat returns the expected data format hint for a field, or
// "" when none is configured.
func (c *Catalog) ExpectedFormat(name string) string {
	return c.descriptors[name].ExpectedFormat
}

// Names returns every field name with an explicit descriptor, in
// unspecified order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.descriptors))
	for name := range c.descriptors {
		names = append(names, name)
	}
	return names
}
