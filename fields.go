package ability

// CanUpdateFields reports whether the ability permits changing exactly the
// given fields of a record. A rule carrying a Fields restriction only
// justifies changes within its listed set; rules without a restriction cover
// every field. This is the caller-side companion to Can: Can answers the
// type/condition-level question, this answers the field-diff question that
// partial updates need.
func (a *Ability) CanUpdateFields(rec Record, fields ...string) bool {
	subj := RecordSubject(rec)
	if !a.Can(ActionUpdate, subj) {
		return false
	}
	if len(fields) == 0 {
		return true
	}
	rules := a.relevantRules(ActionUpdate, subj)
	for _, f := range fields {
		if !fieldPermitted(rules, f) {
			return false
		}
	}
	return true
}

// fieldPermitted resolves one field against the matching rules: the last
// rule that speaks for the field (an unrestricted rule speaks for all of
// them) decides, mirroring the engine's last-match-wins order.
func fieldPermitted(rules []*Rule, field string) bool {
	for i := len(rules) - 1; i >= 0; i-- {
		r := rules[i]
		if len(r.Fields) == 0 {
			return r.Effect == EffectAllow
		}
		for _, rf := range r.Fields {
			if rf == field {
				return r.Effect == EffectAllow
			}
		}
	}
	return false
}
