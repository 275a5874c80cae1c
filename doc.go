/*
Package entityp maps entity records onto relational tables.

An entity is described by a Definition: its name, which is also its table, and its ordered
attributes. A Repository turns records into SQL through a Builder, runs it through a
Gateway (usually a *sqlp.DB) and maps the rows back into records.

	def := entityp.Define("widget", entityp.Attr("label", "text"))
	repo, err := entityp.New(db, def)
	...
	rec, err := repo.Save(ctx, entityp.NewRecord(entityp.Fields{"label": "x"}))
	// rec.ID is now set
	widgets, err := repo.List(ctx, entityp.All().OrderBy("label", entityp.Desc))

Field names are lower camel case and map to snake case columns (createdDate is stored as
created_date). Identifiers are validated when a repository is built and quoted in every
statement; values are always bound.

Some edges to be aware of:
  - A nil or empty filter matches every row, for Load, List, Count and Delete alike.
  - Load, Find and List report not found as nil, never as an error.
  - Only declared attributes are written. Other fields on a record are dropped silently,
    but are rejected in filters.
*/
package entityp
