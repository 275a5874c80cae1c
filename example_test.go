package entityp_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/greghart/entityp"
	"github.com/greghart/entityp/sqlp"
)

// Example saves and lists records against a throwaway sqlite database.
func Example() {
	dir, err := os.MkdirTemp("", "entityp")
	if err != nil {
		log.Panicf("failed to make temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	db, err := sqlp.Open("sqlite3", filepath.Join(dir, "example.db"))
	if err != nil {
		log.Panicf("failed to open: %v", err)
	}
	defer db.Shutdown() // nolint:errcheck
	ctx := context.Background()

	repo, err := entityp.New(db, entityp.Define("widget", entityp.Attr("label", "text")))
	if err != nil {
		log.Panicf("failed to build repository: %v", err)
	}
	if err := repo.CreateTable(ctx); err != nil {
		log.Panicf("failed to create table: %v", err)
	}

	for _, label := range []string{"x", "y"} {
		rec, err := repo.Save(ctx, entityp.NewRecord(entityp.Fields{"label": label}))
		if err != nil {
			log.Panicf("failed to save: %v", err)
		}
		fmt.Println("saved", rec.ID)
	}

	widgets, err := repo.List(ctx, entityp.All().OrderBy("label", entityp.Desc))
	if err != nil {
		log.Panicf("failed to list: %v", err)
	}
	for _, w := range widgets {
		fmt.Println(w.Type, w.ID, w.Get("label"))
	}
	// Output:
	// saved 1
	// saved 2
	// widget 2 y
	// widget 1 x
}

// Example_statements shows the SQL generated for an entity, without any database.
func Example_statements() {
	def, err := entityp.ParseDefinition([]byte(`
name: widget
attributes:
  label: text
  createdDate: {type: timestamp, unique: true}
`))
	if err != nil {
		log.Panicf("failed to parse definition: %v", err)
	}
	b := entityp.NewBuilder(def, sqlp.Postgres)

	create, _ := b.CreateTable()
	fmt.Println(create)

	insert, _ := b.Insert(entityp.NewRecord(entityp.Fields{"label": "x", "color": "red"}))
	fmt.Println(insert.Query, insert.Args)

	sel, _ := b.Select(entityp.Where(entityp.Fields{"label": "x"}).OrderBy("createdDate", entityp.Desc).WithLimit(10))
	fmt.Println(sel.Query, sel.Args)
	// Output:
	// CREATE TABLE "widget" ("label" text, "created_date" timestamp UNIQUE, id SERIAL, CONSTRAINT "pk_widget_id" PRIMARY KEY (id))
	// INSERT INTO "widget" ("label") VALUES ($1) RETURNING id [x]
	// SELECT * FROM "widget" WHERE "label"=$1 ORDER BY "created_date" DESC LIMIT 10 [x]
}

type Widget struct {
	ID    int64
	Label string
}

// Example_typed persists structs instead of records.
func Example_typed() {
	dir, err := os.MkdirTemp("", "entityp")
	if err != nil {
		log.Panicf("failed to make temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	db, err := sqlp.Open("sqlite3", filepath.Join(dir, "example.db"))
	if err != nil {
		log.Panicf("failed to open: %v", err)
	}
	defer db.Shutdown() // nolint:errcheck
	ctx := context.Background()

	repo, err := entityp.NewTyped[Widget](db, entityp.Define("widget", entityp.Attr("label", "text")))
	if err != nil {
		log.Panicf("failed to build repository: %v", err)
	}
	if err := repo.Records().CreateTable(ctx); err != nil {
		log.Panicf("failed to create table: %v", err)
	}

	w, err := repo.Save(ctx, Widget{Label: "x"})
	if err != nil {
		log.Panicf("failed to save: %v", err)
	}
	w.Label = "y"
	if _, err := repo.Save(ctx, w); err != nil {
		log.Panicf("failed to update: %v", err)
	}

	found, err := repo.Find(ctx, w.ID)
	if err != nil {
		log.Panicf("failed to find: %v", err)
	}
	fmt.Printf("%+v\n", *found)
	// Output:
	// {ID:1 Label:y}
}
