// Command pipeflowctl is the entry point for the pipeflow CLI.
package main

import (
	"log"

	"github.com/evalgo-labs/pipeflow/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
