package panda

import "strings"

// BranchList declares which output branches are written.
//
// Entries are branch names ("muons") or dotted field names
// ("muons.matchedGen_"). An entry prefixed with "!" declares the branch
// absent. Later entries override earlier ones, so a collection can be
// declared and then have individual fields removed.
type BranchList []string

// Append adds declarations.
func (l *BranchList) Append(names ...string) {
	*l = append(*l, names...)
}

// Absent is shorthand for declaring a branch absent.
func (l *BranchList) Absent(name string) {
	*l = append(*l, "!"+name)
}

// Includes reports whether the named branch or field is written.
func (l BranchList) Includes(name string) bool {
	included := false
	for _, entry := range l {
		negated := strings.HasPrefix(entry, "!")
		entry = strings.TrimPrefix(entry, "!")
		if entry == name || strings.HasPrefix(name, entry+".") {
			included = !negated
		}
	}
	return included
}

// Filter removes from doc every collection and record field the list does
// not include. Top-level scalars (event identifiers) are always kept.
func (l BranchList) Filter(doc map[string]any) {
	for key, val := range doc {
		records, ok := val.([]any)
		if !ok {
			continue
		}
		if !l.Includes(key) {
			delete(doc, key)
			continue
		}
		for _, rec := range records {
			fields, ok := rec.(map[string]any)
			if !ok {
				continue
			}
			for field := range fields {
				if !l.Includes(key + "." + field) {
					delete(fields, field)
				}
			}
		}
	}
}
