package db

// SchemaSQL is the complete schema for fresh redress installs.
//
// This is the single source of truth for the database schema. All tests
// create their fixtures via GetSchemaSQL() so that repository code
// referencing a column that does not exist here fails immediately with
// "no such column" instead of drifting silently.
const SchemaSQL = `
-- Items (flagged records under remediation; owned by the record store)
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL,
	item_type TEXT NOT NULL CHECK(item_type IN ('account', 'inquiry', 'public-record', 'collection')),
	furnisher TEXT NOT NULL,
	balance_cents INTEGER NOT NULL DEFAULT 0,
	payment_status TEXT NOT NULL DEFAULT 'current',
	opened_at DATETIME,
	reported_at DATETIME,
	identity_theft_flag INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Dispute history entries for an item (ordered by disputed_at)
CREATE TABLE IF NOT EXISTS item_disputes (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL,
	disputed_at DATETIME NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'verified', 'deleted', 'updated', 'no-response')),
	FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
);

-- Subjects (the people remediation runs on behalf of)
CREATE TABLE IF NOT EXISTS subjects (
	id TEXT PRIMARY KEY,
	plan_tier TEXT NOT NULL CHECK(plan_tier IN ('standard', 'plus', 'premium')) DEFAULT 'standard',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Strategy attempts already made against an item (feeds eligibility)
CREATE TABLE IF NOT EXISTS strategy_attempts (
	id TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	strategy_id TEXT NOT NULL,
	attempted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (subject_id) REFERENCES subjects(id),
	FOREIGN KEY (item_id) REFERENCES items(id),
	UNIQUE(item_id, strategy_id)
);

-- Executions (one in-flight application of a strategy to an item)
CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL,
	strategy_id TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'running', 'completed', 'failed', 'cancelled')),
	current_step TEXT,
	round INTEGER NOT NULL DEFAULT 0,
	next_strategy_id TEXT,
	submission_receipt TEXT,
	submitted_at DATETIME,
	response_recorded_at DATETIME,
	cancel_requested INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME,
	FOREIGN KEY (item_id) REFERENCES items(id),
	FOREIGN KEY (subject_id) REFERENCES subjects(id)
);

-- Step history (ordered sub-states within a running execution)
CREATE TABLE IF NOT EXISTS execution_steps (
	id TEXT PRIMARY KEY,
	execution_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('running', 'completed', 'failed', 'skipped')),
	started_at DATETIME NOT NULL,
	completed_at DATETIME,
	result TEXT,
	error TEXT,
	FOREIGN KEY (execution_id) REFERENCES executions(id) ON DELETE CASCADE,
	UNIQUE(execution_id, seq)
);

-- Scheduled triggers (time-gated escalation events)
CREATE TABLE IF NOT EXISTS triggers (
	id TEXT PRIMARY KEY,
	execution_id TEXT NOT NULL,
	trigger_type TEXT NOT NULL CHECK(trigger_type IN ('follow-up', 'escalate-regulatory', 'advance-round')),
	due_at DATETIME NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	fired_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (execution_id) REFERENCES executions(id) ON DELETE CASCADE
);

-- At most one enabled trigger per execution
CREATE UNIQUE INDEX IF NOT EXISTS idx_triggers_one_enabled
	ON triggers(execution_id) WHERE enabled = 1;

CREATE INDEX IF NOT EXISTS idx_triggers_due ON triggers(due_at) WHERE enabled = 1;
CREATE INDEX IF NOT EXISTS idx_executions_status ON executions(status);
CREATE INDEX IF NOT EXISTS idx_item_disputes_item ON item_disputes(item_id);
`

// GetSchemaSQL returns the schema DDL for tests and init.
func GetSchemaSQL() string {
	return SchemaSQL
}
