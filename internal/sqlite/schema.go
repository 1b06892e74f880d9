// Package sqlite implements the SQLite session store for Pathway.
package sqlite

// Schema DDL for all tables.
const (
	createCourses = `CREATE TABLE IF NOT EXISTS courses (
    course_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    definition TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createSessions = `CREATE TABLE IF NOT EXISTS sessions (
    learner_id TEXT NOT NULL,
    course_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    lifecycle TEXT NOT NULL,
    document TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (learner_id, course_id),
    FOREIGN KEY (course_id) REFERENCES courses(course_id)
);`

	createNavigationLog = `CREATE TABLE IF NOT EXISTS navigation_log (
    entry_id TEXT PRIMARY KEY,
    learner_id TEXT NOT NULL,
    course_id TEXT NOT NULL,
    request_type TEXT NOT NULL,
    target_id TEXT,
    success INTEGER NOT NULL,
    exception TEXT,
    current_activity_id TEXT,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxSessionsLifecycle = `CREATE INDEX IF NOT EXISTS idx_sessions_lifecycle ON sessions(lifecycle);`
	idxLogSession        = `CREATE INDEX IF NOT EXISTS idx_navigation_log_session ON navigation_log(learner_id, course_id, created_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createCourses,
	createSessions,
	createNavigationLog,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSessionsLifecycle,
	idxLogSession,
}
