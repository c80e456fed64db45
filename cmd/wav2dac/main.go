// ABOUTME: Converts WAV files into converter tables for the DAC
// ABOUTME: Writes a binary .bin table and a C initializer .hex file
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sendspin/sendspin-dac/pkg/audio/source"
)

var (
	input  = flag.String("i", "", "Input WAV file")
	outDir = flag.String("o", "", "Output directory (default: next to the input)")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *input == "" {
		log.Fatal("Input file isn't specified")
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer f.Close()

	table, err := Convert(f)
	if table != nil {
		fmt.Printf("Format: %d\nChannels: %d\nFrequency: %d\nBits per sample: %d\n",
			table.Format, table.Channels, table.SampleRate, table.BitDepth)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nMin sample: %d\nMax sample: %d\n", table.Min, table.Max)

	dir := *outDir
	if dir == "" {
		dir = filepath.Dir(*input)
	}
	base := filepath.Join(dir, strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input)))

	if err := writeTables(base, table); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nWrote %s.bin and %s.hex (%d samples)\n", base, base, len(table.Codes))
}

// writeTables writes base.bin and base.hex
func writeTables(base string, table *Table) error {
	bin, err := os.Create(base + ".bin")
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	defer bin.Close()
	if err := source.EncodeTable(bin, table.Codes); err != nil {
		return err
	}

	hex, err := os.Create(base + ".hex")
	if err != nil {
		return fmt.Errorf("failed to create hex table: %w", err)
	}
	defer hex.Close()
	return source.EncodeHex(hex, table.Codes)
}
