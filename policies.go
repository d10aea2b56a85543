package ability

// Policy handler constructors. These are the integration surface between the
// decision engine and the feature modules: each handler asks the ability one
// question and returns a boolean, and the guard runs the handlers attached to
// an operation in order.

// RequireCan checks the action against the candidate record when one of the
// expected type was resolved, and against the bare type otherwise.
func RequireCan(action Action, subject SubjectType) PolicyHandler {
	return PolicyHandlerFunc(func(pc *PolicyContext) bool {
		if pc == nil || pc.Ability == nil {
			return false
		}
		if pc.Record != nil && pc.Record.SubjectType() == subject {
			return pc.Ability.Can(action, RecordSubject(pc.Record))
		}
		return pc.Ability.Can(action, SubjectOf(subject))
	})
}

// RequireRecord is like RequireCan but insists on a resolved record of the
// expected type; operations that always target a specific record attach this
// so a failed lookup cannot degrade into a type-level pass.
func RequireRecord(action Action, subject SubjectType) PolicyHandler {
	return PolicyHandlerFunc(func(pc *PolicyContext) bool {
		if pc == nil || pc.Ability == nil || pc.Record == nil {
			return false
		}
		if pc.Record.SubjectType() != subject {
			return false
		}
		return pc.Ability.Can(action, RecordSubject(pc.Record))
	})
}

// RequireUpdateFields enforces a field-diff update check: the resolved
// record may only be changed in the listed fields, honoring any field
// restrictions the matching rules carry.
func RequireUpdateFields(subject SubjectType, fields ...string) PolicyHandler {
	return PolicyHandlerFunc(func(pc *PolicyContext) bool {
		if pc == nil || pc.Ability == nil || pc.Record == nil {
			return false
		}
		if pc.Record.SubjectType() != subject {
			return false
		}
		return pc.Ability.CanUpdateFields(pc.Record, fields...)
	})
}

// DefaultAttachments returns the per-operation policy handlers the routing
// layer registers for the property domain: plain CRUD checks per resource,
// record-level where an :id is always present, plus the contractor
// maintenance-update carve-out.
func DefaultAttachments() map[string][]PolicyHandler {
	out := make(map[string][]PolicyHandler)
	for _, st := range SubjectTypes() {
		out[string(st)+".create"] = []PolicyHandler{RequireCan(ActionCreate, st)}
		out[string(st)+".list"] = []PolicyHandler{RequireCan(ActionRead, st)}
		out[string(st)+".read"] = []PolicyHandler{RequireCan(ActionRead, st)}
		out[string(st)+".update"] = []PolicyHandler{RequireCan(ActionUpdate, st)}
		out[string(st)+".delete"] = []PolicyHandler{RequireCan(ActionDelete, st)}
	}
	out["unit.maintenance"] = []PolicyHandler{
		RequireUpdateFields(SubjectUnit, "maintenanceStatus", "notes"),
	}
	return out
}
