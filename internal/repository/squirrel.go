package repository

import sq "github.com/Masterminds/squirrel"

// psql is the Squirrel statement builder configured for PostgreSQL dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// sqlite is the Squirrel statement builder for SQLite question-mark placeholders.
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// collectionsTable stores one document per collection key in both SQL backends.
const collectionsTable = "collections"
