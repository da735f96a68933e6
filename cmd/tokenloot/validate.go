package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenloot/tokenloot/internal/rules"
)

func validateCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a rule-set file for structural problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rulesPath)
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "rules.yaml", "path to the rule-set YAML file")
	return cmd
}

func runValidate(rulesPath string) error {
	ctx := context.Background()

	rs, err := rules.NewFileStore(rulesPath).Load(ctx)
	if err != nil {
		return err
	}

	if err := rules.Validate(rs); err != nil {
		fmt.Fprintln(os.Stdout, err.Error())
		return fmt.Errorf("rule set has problems")
	}

	groupCount := len(rs.Groups)
	blockCount := 0
	rowCount := 0
	for _, g := range rs.Groups {
		blockCount += len(g.DistributionBlocks)
		for _, b := range g.DistributionBlocks {
			rowCount += len(b.Items)
		}
	}
	fmt.Fprintf(os.Stdout, "OK: %d groups, %d blocks, %d rows\n", groupCount, blockCount, rowCount)
	return nil
}
