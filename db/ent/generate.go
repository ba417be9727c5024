//go:build ignore

package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// Regenerates the typed client for db/ent/schema into gen/ent. The service itself
// queries through entgo.io/ent/dialect/sql and does not depend on the generated code.
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:  "gen/ent",
			Package: "github.com/joseph-ayodele/label-approvals/gen/ent",
			Schema:  "github.com/joseph-ayodele/label-approvals/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
