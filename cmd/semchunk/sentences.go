// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leseb/semchunk/pkg/extractor"
	"github.com/leseb/semchunk/pkg/segment"
)

func newSentencesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sentences <doc>",
		Short: "Print the sentences a document is segmented into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			id, err := a.documentID(args[0])
			if err != nil {
				return err
			}
			text, err := extractor.New(store).Extract(ctx, id)
			if err != nil {
				return err
			}

			n := 0
			for s := range segment.Sentences(text) {
				n++
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n, s)
			}
			return nil
		},
	}
}
