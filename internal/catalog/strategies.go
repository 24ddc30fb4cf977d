package catalog

// Builtin returns the default strategy table. Construction cannot fail:
// the table is fixed and ids are unique by inspection.
func Builtin() *StaticCatalog {
	c, err := NewStaticCatalog(builtinStrategies)
	if err != nil {
		panic(err)
	}
	return c
}

// builtinStrategies is the shipped strategy table, ordered by id. Catalog
// order is meaningful: it is the tie-break for equally-scored strategies.
var builtinStrategies = []*Strategy{
	{
		ID:              "obsolete-information",
		Name:            "Obsolete Information Removal",
		Tactic:          "statutory-removal",
		LegalBasis:      "FCRA 605(a) limits how long adverse information may be reported; items past the statute period must be deleted.",
		BaseSuccessRate: 0.90,
		Tier:            1,
		TargetItems:     []ItemType{ItemTypeAccount, ItemTypeCollection, ItemTypePublicRecord},
		KeyTactics:      []string{"date-of-first-delinquency audit", "statute period calculation", "deletion demand"},
		Prerequisites:   []string{"exceeds-statute-period"},
		Timeline:        "30-45 days",
		Active:          true,
	},
	{
		ID:              "factual-dispute",
		Name:            "Factual Accuracy Dispute",
		Tactic:          "direct-dispute",
		LegalBasis:      "FCRA 611(a) requires reinvestigation of disputed information and deletion of anything unverifiable.",
		BaseSuccessRate: 0.78,
		Tier:            1,
		TargetItems:     []ItemType{ItemTypeAccount, ItemTypeInquiry, ItemTypePublicRecord, ItemTypeCollection},
		KeyTactics:      []string{"field-level inaccuracy audit", "reinvestigation demand", "unverifiable-data deletion"},
		Prerequisites:   nil,
		Timeline:        "30-45 days",
		Active:          true,
	},
	{
		ID:              "public-record-audit",
		Name:            "Public Record Verification Audit",
		Tactic:          "procedural-challenge",
		LegalBasis:      "FCRA 613 obliges bureaus to maintain strict procedures for public record information used in reports.",
		BaseSuccessRate: 0.60,
		Tier:            2,
		TargetItems:     []ItemType{ItemTypePublicRecord},
		KeyTactics:      []string{"court record cross-check", "strict-procedure demand", "source verification"},
		Prerequisites:   nil,
		Timeline:        "30-60 days",
		Active:          true,
	},
	{
		ID:              "debt-validation",
		Name:            "Debt Validation Demand",
		Tactic:          "collector-challenge",
		LegalBasis:      "FDCPA 809(b) suspends collection until the collector validates the debt after a timely demand.",
		BaseSuccessRate: 0.72,
		Tier:            2,
		TargetItems:     []ItemType{ItemTypeCollection},
		KeyTactics:      []string{"validation demand", "chain-of-title challenge", "collection suspension"},
		Prerequisites:   []string{"is-third-party-collection"},
		Timeline:        "30-45 days",
		Active:          true,
	},
	{
		ID:              "method-of-verification",
		Name:            "Method of Verification Demand",
		Tactic:          "procedural-challenge",
		LegalBasis:      "FCRA 611(a)(7) entitles the consumer to a description of the procedure used to verify a disputed item.",
		BaseSuccessRate: 0.55,
		Tier:            2,
		TargetItems:     []ItemType{ItemTypeAccount, ItemTypeCollection, ItemTypePublicRecord},
		KeyTactics:      []string{"verification procedure demand", "furnisher contact audit", "re-dispute on weak verification"},
		Prerequisites:   []string{"has-prior-verified-dispute"},
		Timeline:        "15-30 days",
		Active:          true,
	},
	{
		ID:              "inquiry-challenge",
		Name:            "Unauthorized Inquiry Challenge",
		Tactic:          "direct-dispute",
		LegalBasis:      "FCRA 604 permits pulls only with a permissible purpose; unauthorized inquiries must be removed.",
		BaseSuccessRate: 0.50,
		Tier:            3,
		TargetItems:     []ItemType{ItemTypeInquiry},
		KeyTactics:      []string{"permissible-purpose demand", "authorization audit", "removal demand"},
		Prerequisites:   nil,
		Timeline:        "30 days",
		Active:          true,
	},
	{
		ID:              "goodwill-adjustment",
		Name:            "Goodwill Adjustment Request",
		Tactic:          "negotiation",
		LegalBasis:      "No statutory lever; relies on furnisher discretion to delete accurate but isolated derogatory marks.",
		BaseSuccessRate: 0.35,
		Tier:            3,
		TargetItems:     []ItemType{ItemTypeAccount},
		KeyTactics:      []string{"hardship narrative", "payment history emphasis", "relationship appeal"},
		Prerequisites:   []string{"has-positive-payment-history"},
		Timeline:        "30-90 days",
		Active:          true,
	},
	{
		ID:              "estoppel-by-silence",
		Name:            "Estoppel by Silence Escalation",
		Tactic:          "procedural-challenge",
		LegalBasis:      "A counterparty that stays silent past the statutory response window forfeits the claim that the item was verified.",
		BaseSuccessRate: 0.60,
		Tier:            4,
		TargetItems:     []ItemType{ItemTypeAccount, ItemTypeCollection},
		KeyTactics:      []string{"response-window audit", "silence-as-admission argument", "deletion demand"},
		Prerequisites:   []string{"bureau-response-overdue"},
		Timeline:        "15-30 days",
		Active:          true,
	},
	{
		ID:              "identity-theft-block",
		Name:            "Identity Theft Block",
		Tactic:          "statutory-removal",
		LegalBasis:      "FCRA 605B requires blocking of information resulting from identity theft within 4 business days of a proper notice.",
		BaseSuccessRate: 0.65,
		Tier:            5,
		TargetItems:     []ItemType{ItemTypeAccount, ItemTypeInquiry, ItemTypeCollection},
		KeyTactics:      []string{"identity theft report", "block demand", "furnisher notification"},
		Prerequisites:   nil,
		Timeline:        "4-15 days",
		Active:          true,
	},
	{
		ID:              "pay-for-delete",
		Name:            "Pay for Delete Negotiation",
		Tactic:          "negotiation",
		LegalBasis:      "Settlement offer conditioned on deletion; enforceable only through the written agreement itself.",
		BaseSuccessRate: 0.45,
		Tier:            6,
		TargetItems:     []ItemType{ItemTypeCollection},
		KeyTactics:      []string{"settlement offer", "deletion clause", "written-agreement-first rule"},
		Prerequisites:   []string{"is-third-party-collection"},
		Timeline:        "30-60 days",
		Active:          true,
	},
}
