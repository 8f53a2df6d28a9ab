package grouping

import (
	"strings"

	"github.com/pthm/nestgroup/pkg/query"
	"github.com/pthm/nestgroup/pkg/schema"
)

// ResolveRelationshipName returns everything before the last dot of path,
// or "" when path names a local attribute.
func ResolveRelationshipName(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// ResolveRelationshipAttribute returns everything after the last dot of
// path, or path itself when it has none.
func ResolveRelationshipAttribute(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// ResolveRelationship walks the relationship segments of path from entity
// and returns the last relation reached. It returns nil when path has no
// relationship segment or any segment is an attribute rather than a
// relation. A name that is an attribute is never resolved as a relation,
// even if a relation of the same name is declared.
func ResolveRelationship(entity schema.Entity, path string) *schema.Relation {
	name := ResolveRelationshipName(path)
	if name == "" || entity == nil {
		return nil
	}

	var rel *schema.Relation
	current := entity
	for _, segment := range strings.Split(name, ".") {
		if current.HasAttribute(segment) || !current.IsRelation(segment) {
			return nil
		}
		next, ok := current.Relation(segment)
		if !ok || next.Related == nil {
			return nil
		}
		rel = next
		current = next.Related
	}
	return rel
}

// qualify rewrites a relationship path to the attribute's column on the
// table q joins for the relationship. Paths that do not resolve are
// returned as is.
func qualify(q query.Query, entity schema.Entity, path string) string {
	rel := ResolveRelationship(entity, path)
	if rel == nil {
		return path
	}
	attr := ResolveRelationshipAttribute(path)
	ref, err := q.JoinRelation(ResolveRelationshipName(path))
	if err != nil {
		return rel.Related.QualifyColumn(attr)
	}
	return ref + "." + attr
}

// entityOf returns the model q selects from as an entity, or nil.
func entityOf(q query.Query) schema.Entity {
	if m := q.Model(); m != nil {
		return m
	}
	return nil
}
