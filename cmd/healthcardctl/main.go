// Command healthcardctl is the operator CLI: schema migrations and the
// administrative review operations that are run outside the HTTP API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
