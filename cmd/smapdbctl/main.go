// Command smapdbctl builds, queries, and unwraps sealed memdb source-map
// containers from the command line.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smapdbctl",
		Short: "Build and query sealed source-map memdb containers",
		Long:  "smapdbctl builds a sealed, memory-mappable memdb from a JSON source map, looks up generated positions against one, and unwraps a transport envelope back into a raw memdb file.",
	}

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newUnwrapCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	log.Printf(format, args...)
	os.Exit(1)
}
