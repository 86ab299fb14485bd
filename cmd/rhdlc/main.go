// Command rhdlc drives the compiler pipeline — infer, check-clocks, lower,
// or all three as pipeline — over a JSON-encoded MIR or RHIF object,
// mirroring the teacher's cmd/z80opt: one cobra root command, one
// subcommand per pipeline stage, each a thin RunE wrapping a pkg/rhdlcore
// call.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhdl/rhdlcore/pkg/ckpt"
	"github.com/rhdl/rhdlcore/pkg/mirjson"
	"github.com/rhdl/rhdlcore/pkg/rhdlcore"
	"github.com/rhdl/rhdlcore/pkg/rhifjson"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rhdlc",
		Short: "Run the RHDL compiler core pipeline over a JSON-encoded IR object",
	}
	root.AddCommand(newInferCmd(), newCheckClocksCmd(), newLowerCmd(), newPipelineCmd())
	return root
}

func newInferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <mir.json>",
		Short: "Type-infer a MIR object and print the resulting RHIF object as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("rhdlc infer: %w", err)
			}
			mirObj, ctx, err := mirjson.Decode(data)
			if err != nil {
				return fmt.Errorf("rhdlc infer: decode: %w", err)
			}
			rhifObj, err := rhdlcore.InferWithContext(ctx, mirObj)
			if err != nil {
				return err
			}
			out, err := rhifjson.Encode(rhifObj)
			if err != nil {
				return fmt.Errorf("rhdlc infer: encode: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newCheckClocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-clocks <rhif.json>",
		Short: "Validate clock-domain consistency on an inferred RHIF object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("rhdlc check-clocks: %w", err)
			}
			rhifObj, err := rhifjson.Decode(data)
			if err != nil {
				return fmt.Errorf("rhdlc check-clocks: decode: %w", err)
			}
			if err := rhdlcore.CheckClocks(rhifObj); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newLowerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lower <rhif.json>",
		Short: "Lower a clock-checked RHIF object into flat RTL and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("rhdlc lower: %w", err)
			}
			rhifObj, err := rhifjson.Decode(data)
			if err != nil {
				return fmt.Errorf("rhdlc lower: decode: %w", err)
			}
			rtlObj, err := rhdlcore.Lower(rhifObj)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(rtlObj, "", "  ")
			if err != nil {
				return fmt.Errorf("rhdlc lower: encode: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newPipelineCmd() *cobra.Command {
	var cacheDir string
	cmd := &cobra.Command{
		Use:   "pipeline <mir.json>",
		Short: "Run infer, check-clocks, and lower in sequence over a MIR object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("rhdlc pipeline: %w", err)
			}
			mirObj, ctx, err := mirjson.Decode(data)
			if err != nil {
				return fmt.Errorf("rhdlc pipeline: decode: %w", err)
			}

			var cache *ckpt.Cache
			if cacheDir != "" {
				cache, err = ckpt.Open(cacheDir)
				if err != nil {
					return err
				}
				if cached, ok, err := cache.Load(mirObj.FnId); err != nil {
					return err
				} else if ok {
					out, err := json.MarshalIndent(cached, "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(out))
					return nil
				}
			}

			rtlObj, err := rhdlcore.CompileWithContext(ctx, mirObj)
			if err != nil {
				return err
			}
			if cache != nil {
				if err := cache.Store(mirObj.FnId, rtlObj); err != nil {
					return err
				}
			}
			out, err := json.MarshalIndent(rtlObj, "", "  ")
			if err != nil {
				return fmt.Errorf("rhdlc pipeline: encode: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&cacheDir, "cache", "", "directory for cached RTL objects, keyed by function id (skips recompilation on a hit)")
	return cmd
}
