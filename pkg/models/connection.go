package models

// connectionRules is the single source of truth for which categories may be linked.
// Nothing may connect into a trigger; actions only feed other actions.
var connectionRules = map[CategoryType]map[CategoryType]bool{
	CategoryTypeTrigger: {
		CategoryTypeTrigger:   false,
		CategoryTypeCondition: true,
		CategoryTypeAction:    true,
	},
	CategoryTypeCondition: {
		CategoryTypeTrigger:   false,
		CategoryTypeCondition: true,
		CategoryTypeAction:    true,
	},
	CategoryTypeAction: {
		CategoryTypeTrigger:   false,
		CategoryTypeCondition: false,
		CategoryTypeAction:    true,
	},
}

// IsConnectionValid reports whether a block of the source category may connect to a
// block of the target category. Unknown categories are never valid.
func IsConnectionValid(source, target CategoryType) bool {
	return connectionRules[source][target]
}
