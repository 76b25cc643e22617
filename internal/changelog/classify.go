package changelog

// typeToCategory maps commit types onto Keep a Changelog sections.
var typeToCategory = map[string]CategoryName{
	"feat":    Added,
	"feature": Added,

	"change":   Changed,
	"refactor": Changed,
	"perf":     Changed,
	"style":    Changed,

	"deprecate": Deprecated,
	"remove":    Removed,

	"fix":    Fixed,
	"bugfix": Fixed,

	"security": Security,
	"docs":     Documentation,
	"test":     Testing,
	"build":    Build,
	"ci":       CI,

	"chore":  Changed,
	"revert": Changed,
}

// Classify returns the category a change of the given type belongs to.
// Breaking changes always land in Changed, whatever their type; unmapped
// types (including "other") default to Changed.
func Classify(commitType string, breaking bool) CategoryName {
	if breaking {
		return Changed
	}
	if cat, ok := typeToCategory[commitType]; ok {
		return cat
	}
	return Changed
}
