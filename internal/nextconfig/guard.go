package nextconfig

// Decision is the outcome of the idempotency check
type Decision int

const (
	// NeedsWrap means the export must be wrapped with the plugin
	NeedsWrap Decision = iota
	// AlreadyWrapped means the outermost call already applies the plugin
	AlreadyWrapped
)

func (d Decision) String() string {
	if d == AlreadyWrapped {
		return "already-wrapped"
	}
	return "needs-wrap"
}

// WrapDecision carries the decision and, for NeedsWrap, the site to rewrite
type WrapDecision struct {
	Decision Decision
	Site     *ExportSite
}

// Decide reports whether site still needs the plugin. Only the outermost
// call is inspected: a config that applies the plugin further inside,
// as in withA(nextFusePlugin()(config)), is wrapped again.
func Decide(site *ExportSite) WrapDecision {
	if site.Kind == AlreadyTarget {
		return WrapDecision{Decision: AlreadyWrapped}
	}
	return WrapDecision{Decision: NeedsWrap, Site: site}
}
