package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs"
)

func newCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List supported payload types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range codecs.GetAudioCodecs() {
				fmt.Fprintln(cmd.OutOrStdout(), c.Describe())
			}
			return nil
		},
	}
}
