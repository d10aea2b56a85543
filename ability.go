package ability

// ============================================================================
// ACTION / SUBJECT VOCABULARY
// ============================================================================

// Action represents how a record is being accessed
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionManage is the wildcard: a rule granting manage covers every
	// other action, and a check for manage is satisfied only by a manage grant.
	ActionManage Action = "manage"
)

// Actions returns the concrete (non-wildcard) action vocabulary.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// ParseAction validates a string against the closed action vocabulary.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return Action(s), true
	}
	return "", false
}

// SubjectType identifies a resource kind the engine can reason about
type SubjectType string

const (
	SubjectProperty     SubjectType = "property"
	SubjectUnit         SubjectType = "unit"
	SubjectLease        SubjectType = "lease"
	SubjectRentalPeriod SubjectType = "rentalPeriod"
	SubjectTransaction  SubjectType = "transaction"
	SubjectUser         SubjectType = "user"
	SubjectTenantParty  SubjectType = "tenant"
	SubjectContractor   SubjectType = "contractor"
	SubjectInvitation   SubjectType = "invitation"
	SubjectMedia        SubjectType = "media"
)

// SubjectTypes returns every registered subject type.
func SubjectTypes() []SubjectType {
	return []SubjectType{
		SubjectProperty, SubjectUnit, SubjectLease, SubjectRentalPeriod,
		SubjectTransaction, SubjectUser, SubjectTenantParty,
		SubjectContractor, SubjectInvitation, SubjectMedia,
	}
}

// ParseSubjectType validates a string against the registered subject types.
func ParseSubjectType(s string) (SubjectType, bool) {
	for _, st := range SubjectTypes() {
		if SubjectType(s) == st {
			return st, true
		}
	}
	return "", false
}

// Record is a concrete resource instance the engine can match rule
// conditions against. Every record carries an explicit type tag set at
// construction time; the engine never inspects language-level type identity.
// Field resolves a single attribute by its logical name; referenced
// sub-records must already be populated by the caller (the matcher does no I/O).
type Record interface {
	SubjectType() SubjectType
	Field(name string) (any, bool)
}

// Subject is the polymorphic target of a permission check: either a bare
// subject type, or a concrete record instance of that type.
type Subject struct {
	Type   SubjectType
	Record Record // nil for type-only checks
}

// SubjectOf builds a type-only check target.
func SubjectOf(t SubjectType) Subject {
	return Subject{Type: t}
}

// RecordSubject builds a check target for a concrete record instance.
func RecordSubject(r Record) Subject {
	if r == nil {
		return Subject{}
	}
	return Subject{Type: r.SubjectType(), Record: r}
}

// ============================================================================
// RULES
// ============================================================================

// Effect represents the outcome a rule assigns to matching checks
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Rule grants or revokes a set of actions on a subject type, optionally
// scoped by a field condition and optionally restricted to a field subset.
// Rules are order-sensitive: within an Ability the last matching rule wins.
type Rule struct {
	Effect    Effect      `json:"effect"`
	Actions   []Action    `json:"actions"`
	Subject   SubjectType `json:"subject"`
	Condition Condition   `json:"condition,omitempty"`
	Fields    []string    `json:"fields,omitempty"`

	// selfScoped marks a conditioned rule whose condition is already
	// satisfied by the owning user's own attributes (organization, party).
	// Such rules count as matching for type-only checks; other conditioned
	// rules require a concrete record. Computed once at build time.
	selfScoped bool
}

func (r *Rule) coversAction(a Action) bool {
	for _, ra := range r.Actions {
		if ra == a || ra == ActionManage {
			return true
		}
	}
	return false
}

// matches reports whether the rule applies to the given check at the
// type/condition level. Field restrictions are deliberately not considered
// here; they are a caller-side concern (see CanUpdateFields).
func (r *Rule) matches(action Action, subj Subject) bool {
	if r.Subject != subj.Type || subj.Type == "" {
		return false
	}
	if !r.coversAction(action) {
		return false
	}
	if len(r.Condition) == 0 {
		return true
	}
	if subj.Record == nil {
		return r.selfScoped
	}
	return r.Condition.Matches(subj.Record)
}

// ============================================================================
// ABILITY (DECISION ENGINE)
// ============================================================================

// Ability is the computed permission set for one user. It is immutable once
// built, owned by the operation that constructed it, and cheap enough to
// rebuild for every authorization check; it is never shared across requests.
type Ability struct {
	rules []Rule
}

// NewAbility freezes an ordered rule list into an Ability. Rules built
// outside BuildAbility are evaluated strictly: conditioned rules never match
// type-only checks.
func NewAbility(rules []Rule) *Ability {
	frozen := make([]Rule, len(rules))
	copy(frozen, rules)
	return &Ability{rules: frozen}
}

// Rules returns a copy of the ordered rule list.
func (a *Ability) Rules() []Rule {
	if a == nil {
		return nil
	}
	out := make([]Rule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Can reports whether the action is permitted on the subject. The rule list
// is walked in insertion order and the effect of the last matching rule
// decides; no matching rule means deny. Can is total: malformed conditions
// and unresolvable subjects degrade to "no match", never to a panic.
func (a *Ability) Can(action Action, subj Subject) bool {
	if a == nil {
		return false
	}
	allowed := false
	matched := false
	for i := range a.rules {
		if !a.rules[i].matches(action, subj) {
			continue
		}
		matched = true
		allowed = a.rules[i].Effect == EffectAllow
	}
	return matched && allowed
}

// Cannot is the negation of Can.
func (a *Ability) Cannot(action Action, subj Subject) bool {
	return !a.Can(action, subj)
}

// relevantRules returns the matching rules for a check, in insertion order.
func (a *Ability) relevantRules(action Action, subj Subject) []*Rule {
	if a == nil {
		return nil
	}
	var out []*Rule
	for i := range a.rules {
		if a.rules[i].matches(action, subj) {
			out = append(out, &a.rules[i])
		}
	}
	return out
}
