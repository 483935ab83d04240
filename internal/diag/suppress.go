package diag

import "wdlc/internal/cst"

// Suppressed reports whether d's rule is named by a "#@ except: R1, R2"
// directive (§4.1) attached to element or one of its ancestors. The walk
// climbs from element toward the root but stops as soon as it reaches an
// ancestor whose kind is not in allowedScopes — an empty allowedScopes
// means no restriction, matching the teacher's "[]Kind(nil) == no filter"
// convention used elsewhere in this tree.
func Suppressed(d *Diagnostic, element *cst.Node, allowedScopes []cst.Kind) bool {
	if d == nil || d.Rule == "" || element == nil {
		return false
	}
	for _, anc := range element.Ancestors() {
		if !scopeAllowed(anc.Kind(), allowedScopes) {
			break
		}
		if nodeNamesRule(anc, d.Rule) {
			return true
		}
	}
	return false
}

func scopeAllowed(k cst.Kind, allowed []cst.Kind) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, s := range allowed {
		if s == k {
			return true
		}
	}
	return false
}

// nodeNamesRule reports whether n's leading trivia (the comment immediately
// preceding it) contains a suppression directive naming rule.
func nodeNamesRule(n *cst.Node, rule string) bool {
	tok := n.FirstToken()
	if tok == nil {
		return false
	}
	for _, tr := range tok.Leading() {
		if tr.Suppress == nil {
			continue
		}
		for _, r := range tr.Suppress.Rules {
			if r == rule {
				return true
			}
		}
	}
	return false
}

// ExceptableAdd adds d to the bag unless element (or an ancestor within
// allowedScopes) carries a suppression directive naming d's rule, in which
// case d is dropped and ExceptableAdd reports false. Suppressed is a pure
// function of its arguments, so calling ExceptableAdd twice with the same
// (d, element, allowedScopes) against an otherwise-unmodified tree always
// reaches the same drop/keep decision (§8 "suppression idempotence") — the
// only state it mutates is the bag itself, exactly as Add does.
func (b *Bag) ExceptableAdd(d *Diagnostic, element *cst.Node, allowedScopes []cst.Kind) bool {
	if Suppressed(d, element, allowedScopes) {
		return false
	}
	return b.Add(d)
}
