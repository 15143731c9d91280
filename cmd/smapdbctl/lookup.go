package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/smapdb/smapdb/view"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <out.memdb> <line> <col>",
		Short: "Look up the original position for a generated (line, col)",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			line, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				fatalf("invalid line %q: %s", args[1], err)
			}

			col, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				fatalf("invalid column %q: %s", args[2], err)
			}

			runLookup(args[0], uint32(line), uint32(col))
		},
	}
}

func runLookup(path string, line, col uint32) {
	v, err := view.OpenMemDbFile(path)
	if err != nil {
		fatalf("opening %s: %s", path, err)
	}
	defer v.Close()

	tok, ok := v.LookupToken(line, col)
	if !ok {
		fmt.Println("no mapping found")
		os.Exit(1)
	}

	if tok.HasName {
		fmt.Printf("%s:%d:%d name=%s\n", tok.Source, tok.SrcLine, tok.SrcCol, tok.Name)
	} else {
		fmt.Printf("%s:%d:%d\n", tok.Source, tok.SrcLine, tok.SrcCol)
	}
}
