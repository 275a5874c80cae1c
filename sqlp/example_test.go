package sqlp_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/greghart/entityp/sqlp"
)

// Example shows a gateway running statements, inside and outside a transaction.
func Example() {
	dir, err := os.MkdirTemp("", "sqlp")
	if err != nil {
		log.Panicf("failed to make temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	db, err := sqlp.Open("sqlite3", filepath.Join(dir, "test.db"))
	if err != nil {
		log.Panicf("testDB failed to open: %v", err)
	}
	defer db.Shutdown() // nolint:errcheck
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		log.Panicf("testDB failed to ping: %v", err)
	}
	if _, err := db.Execute(ctx, `CREATE TABLE people (id INTEGER PRIMARY KEY, first_name TEXT)`); err != nil {
		log.Panicf("failed to create table: %v", err)
	}

	err = db.RunInTx(ctx, func(ctx context.Context) error {
		for _, name := range []string{"John", "Jane"} {
			res, err := db.Execute(ctx, `INSERT INTO people (first_name) VALUES (?) RETURNING id`, name)
			if err != nil {
				return err
			}
			fmt.Println("inserted", res.Rows[0]["id"])
		}
		return nil
	})
	if err != nil {
		log.Panicf("failed to insert: %v", err)
	}

	res, err := db.Execute(ctx, `SELECT first_name FROM people ORDER BY first_name`)
	if err != nil {
		log.Panicf("failed to select: %v", err)
	}
	for _, row := range res.Rows {
		fmt.Println(row["first_name"])
	}

	res, err = db.Execute(ctx, `DELETE FROM people`)
	if err != nil {
		log.Panicf("failed to delete: %v", err)
	}
	fmt.Println("deleted", res.RowCount)
	// Output:
	// inserted 1
	// inserted 2
	// Jane
	// John
	// deleted 2
}
