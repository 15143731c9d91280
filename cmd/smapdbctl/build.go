package main

import (
	"fmt"
	"os"

	"github.com/smapdb/smapdb/compress"
	"github.com/smapdb/smapdb/memdb"
	"github.com/smapdb/smapdb/view"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var withNames bool
	var withContents bool
	var envelope string

	cmd := &cobra.Command{
		Use:   "build <map.json.map> <out.memdb>",
		Short: "Build a sealed memdb from a JSON source map",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runBuild(args[0], args[1], withNames, withContents, envelope)
		},
	}

	cmd.Flags().BoolVar(&withNames, "names", false, "include the symbol name table")
	cmd.Flags().BoolVar(&withContents, "contents", false, "include brotli-compressed source contents")
	cmd.Flags().StringVar(&envelope, "envelope", "none", "transport envelope applied to the output file: none|zstd|s2|lz4")

	return cmd
}

func runBuild(inPath, outPath string, withNames, withContents bool, envelope string) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		fatalf("reading %s: %s", inPath, err)
	}

	v, err := view.FromJSON(data)
	if err != nil {
		fatalf("parsing source map: %s", err)
	}
	defer v.Close()

	out, err := v.DumpMemdb(memdb.DumpOptions{WithNames: withNames, WithSourceContents: withContents})
	if err != nil {
		fatalf("building memdb: %s", err)
	}

	envelopeType, err := envelopeCompressionType(envelope)
	if err != nil {
		fatalf("%s", err)
	}

	if envelopeType != compress.CompressionNone {
		codec, err := compress.GetCodec(envelopeType)
		if err != nil {
			fatalf("resolving envelope codec: %s", err)
		}

		out, err = codec.Compress(out)
		if err != nil {
			fatalf("applying %s envelope: %s", envelopeType, err)
		}
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fatalf("writing %s: %s", outPath, err)
	}

	fmt.Printf("wrote %d bytes to %s\n", len(out), outPath)
}

func envelopeCompressionType(name string) (compress.CompressionType, error) {
	switch name {
	case "", "none":
		return compress.CompressionNone, nil
	case "zstd":
		return compress.CompressionZstd, nil
	case "s2":
		return compress.CompressionS2, nil
	case "lz4":
		return compress.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown envelope %q", name)
	}
}
