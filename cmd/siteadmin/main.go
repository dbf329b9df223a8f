// Command siteadmin runs the record admin for the marketing site: the admin
// JSON API, schema migration, Markdown seeding and list inspection.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Printf("siteadmin: %v", err)
		os.Exit(1)
	}
}
