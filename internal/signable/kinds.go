package signable

// Meta is the per-kind render metadata consumed by the certificate generator
// and the sync queue. Keeping it here means adding a record kind is one table
// row, not a new service.
type Meta struct {
	// Label is the title line on synthesized certificates.
	Label string
	// FilenamePrefix leads synthesized certificate filenames.
	FilenamePrefix string
	// SyncKind is the event kind reported to the sync sink.
	SyncKind string
}

var kindMeta = map[Kind]Meta{
	KindSafetyTalk: {
		Label:          "Daily safety talk",
		FilenamePrefix: "TALK",
		SyncKind:       "talk",
	},
	KindRiskAnalysis: {
		Label:          "Task risk analysis",
		FilenamePrefix: "RA",
		SyncKind:       "risk_analysis",
	},
	KindSiteInduction: {
		Label:          "Site induction",
		FilenamePrefix: "INDUCTION",
		SyncKind:       "induction",
	},
	KindFitnessEvaluation: {
		Label:          "Fitness-to-work evaluation",
		FilenamePrefix: "FFW",
		SyncKind:       "fitness",
	},
	KindDocument: {
		Label:          "Document acknowledgement",
		FilenamePrefix: "DOC",
		SyncKind:       "document",
	},
	KindEnrollment: {
		Label:          "Worker enrollment - signature record",
		FilenamePrefix: "ENROL",
		SyncKind:       "worker",
	},
}

// MetaFor returns the render metadata for k. Unknown kinds get zero metadata;
// callers validate kinds at publish time.
func MetaFor(k Kind) Meta {
	return kindMeta[k]
}
