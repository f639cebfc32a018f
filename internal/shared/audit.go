package shared

// Audit actions emitted by the consolidation stages.
const (
	AuditTranslate    = "translate_entry"
	AuditCTAPlug      = "cta_plug"
	AuditMatch        = "ic_match"
	AuditUnmatched    = "ic_unmatched"
	AuditEliminate    = "ic_eliminate"
	AuditFXTrueUp     = "fx_true_up"
	AuditAmortize     = "ppa_amortize"
	AuditGoodwill     = "ppa_goodwill"
	AuditBridgeLine   = "bridge_adjustment"
	AuditRuleEvaluate = "rule_evaluate"
	AuditTransition   = "state_transition"
)

// AuditLog is one append-only record of a decision made during a run.
// Sequence numbers are assigned by the owning recorder; entries carry no
// wall clock so identical inputs produce identical trails.
type AuditLog struct {
	Seq      int64
	Action   string
	EntityID string
	Account  string
	Before   string
	After    string
	Detail   string
}

// AuditRecorder collects audit entries for a run. It is write-once: each
// stage receives its own recorder (or batch) and the orchestrator merges
// them in entity order, so concurrent translation workers never contend.
type AuditRecorder struct {
	entries []AuditLog
}

// NewAuditRecorder returns an empty recorder.
func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{entries: make([]AuditLog, 0, 64)}
}

// Record appends one entry. The sequence number is assigned on merge.
func (r *AuditRecorder) Record(log AuditLog) {
	if r == nil {
		return
	}
	r.entries = append(r.entries, log)
}

// Merge appends another recorder's entries, preserving their order.
func (r *AuditRecorder) Merge(other *AuditRecorder) {
	if r == nil || other == nil {
		return
	}
	r.entries = append(r.entries, other.entries...)
}

// Entries seals the trail: sequence numbers are assigned in insertion order
// and a copy is returned so the recorder's state cannot be mutated.
func (r *AuditRecorder) Entries() []AuditLog {
	if r == nil {
		return nil
	}
	out := make([]AuditLog, len(r.entries))
	copy(out, r.entries)
	for i := range out {
		out[i].Seq = int64(i + 1)
	}
	return out
}
