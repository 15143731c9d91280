package main

import (
	"fmt"
	"os"

	"github.com/smapdb/smapdb/compress"
	"github.com/spf13/cobra"
)

func newUnwrapCmd() *cobra.Command {
	var envelope string

	cmd := &cobra.Command{
		Use:   "unwrap <envelope-file> <out.memdb>",
		Short: "Reverse a transport envelope back into a raw memdb file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runUnwrap(args[0], args[1], envelope)
		},
	}

	cmd.Flags().StringVar(&envelope, "envelope", "zstd", "transport envelope to reverse: zstd|s2|lz4")

	return cmd
}

func runUnwrap(inPath, outPath, envelope string) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		fatalf("reading %s: %s", inPath, err)
	}

	envelopeType, err := envelopeCompressionType(envelope)
	if err != nil {
		fatalf("%s", err)
	}
	if envelopeType == compress.CompressionNone {
		fatalf("unwrap requires a real envelope, got %q", envelope)
	}

	codec, err := compress.GetCodec(envelopeType)
	if err != nil {
		fatalf("resolving envelope codec: %s", err)
	}

	out, err := codec.Decompress(data)
	if err != nil {
		fatalf("reversing %s envelope: %s", envelope, err)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fatalf("writing %s: %s", outPath, err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(out), outPath)
}
