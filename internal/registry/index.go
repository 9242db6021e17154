package registry

import (
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Lookuper finds package records by name.
type Lookuper interface {
	Lookup(name string) (*PackageRecord, error)
}

// Index maps package names to records. It is built once and never mutated.
type Index struct {
	records map[string]*PackageRecord
	names   []string
}

// NewIndex builds an index from records. Empty or duplicate names are
// reported as ErrManifestMalformed.
func NewIndex(records []PackageRecord) (*Index, error) {
	idx := &Index{records: make(map[string]*PackageRecord, len(records))}
	for i := range records {
		rec := records[i]
		if rec.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrManifestMalformed, i)
		}
		if _, dup := idx.records[rec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate package %q", ErrManifestMalformed, rec.Name)
		}
		rec.Dependencies = append([]string(nil), rec.Dependencies...)
		idx.records[rec.Name] = &rec
		idx.names = append(idx.names, rec.Name)
	}
	sort.Strings(idx.names)
	return idx, nil
}

// Lookup returns the record for name, or a *NotFoundError carrying close
// matches from the index.
func (i *Index) Lookup(name string) (*PackageRecord, error) {
	if rec, ok := i.records[name]; ok {
		return rec, nil
	}
	return nil, &NotFoundError{Name: name, Suggestions: i.suggest(name)}
}

// Names returns all package names in sorted order.
func (i *Index) Names() []string {
	return append([]string(nil), i.names...)
}

// Len returns the number of packages in the index.
func (i *Index) Len() int {
	return len(i.names)
}

func (i *Index) suggest(name string) []string {
	if name == "" {
		return nil
	}
	var out []string
	for _, m := range fuzzy.Find(name, i.names) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// overlay serves one record ahead of a base index.
type overlay struct {
	root *PackageRecord
	base Lookuper
}

// WithRoot returns a Lookuper that answers root.Name with root and defers
// every other name to base. base may be nil when root has no dependencies.
func WithRoot(base Lookuper, root *PackageRecord) Lookuper {
	return &overlay{root: root, base: base}
}

func (o *overlay) Lookup(name string) (*PackageRecord, error) {
	if name == o.root.Name {
		return o.root, nil
	}
	if o.base == nil {
		return nil, &NotFoundError{Name: name}
	}
	return o.base.Lookup(name)
}
