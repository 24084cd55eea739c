package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/beanledger/pyhash"
)

// DoctorCmd provides doctor utilities for debugging ledger files.
type DoctorCmd struct {
	Dump DumpCmd `cmd:"" help:"Dump the analyzed records of a ledger file."`
	Hash HashCmd `cmd:"" help:"Show string hashes and set iteration order for a hash seed."`
}

// DumpCmd prints the analysis result as Go values.
type DumpCmd struct {
	File     string `help:"Ledger root file." arg:"" type:"existingfile"`
	Semantic bool   `help:"Dump the semantic ledger instead of the record tables."`
}

// Run executes the dump command.
func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
	r, err := newRun(globals, "dump", cmd.File)
	if err != nil {
		return err
	}
	defer r.report(ctx.Stderr)

	result, err := r.analyze(cmd.File)
	if err != nil {
		return err
	}

	p := repr.New(ctx.Stdout, repr.Indent("  "))
	if cmd.Semantic {
		p.Println(result.Ledger)
	} else {
		p.Println(result.Data)
	}
	p.Println(result.Diagnostics)

	return nil
}

// HashCmd shows how tags and links are ordered for the configured hash seed.
type HashCmd struct {
	Values []string `help:"Strings to hash, in insertion order." arg:""`
}

// Run executes the hash command.
func (cmd *HashCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.config()
	if err != nil {
		return err
	}
	key := cfg.HashKey

	_, _ = fmt.Fprintf(ctx.Stdout, "key     k0=%#016x k1=%#016x\n", key.K0, key.K1)
	for _, value := range cmd.Values {
		_, _ = fmt.Fprintf(ctx.Stdout, "hash    %-20q %d\n", value, key.Hash(value))
	}

	order := pyhash.NewOrdering(key).Iterate(cmd.Values)
	_, _ = fmt.Fprintf(ctx.Stdout, "order   %s\n", strings.Join(order, " "))

	return nil
}
