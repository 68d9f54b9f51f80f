// Command merx interprets programs written as Mermaid flowcharts.
package main

import (
	"os"

	"github.com/merx-lang/merx/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
