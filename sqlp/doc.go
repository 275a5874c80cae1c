// sqlp runs generated SQL against database/sql, and is the gateway entityp repositories use.
//   - One "single path" API, `Execute`, returning rows as column -> value maps.
//   - Contextual transactions to let you write tx agnostic callers cleanly.
//   - Dialects (Postgres, SQLite) for placeholders, DDL differences and error classification.
//   - Failures come back as `*ConnectionError` or `*QueryError`, carrying the statement.
package sqlp
