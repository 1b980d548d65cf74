package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs"
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
	"github.com/Vocalocity/rtpproxy-pre-2-0/util"
)

func newStreamsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streams <capture>",
		Short: "List the RTP streams of a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := openReader(opts, args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			streams := reader.GetStreams()
			if len(streams) == 0 {
				return fmt.Errorf("no RTP streams found in %s", args[0])
			}
			printStreams(cmd.OutOrStdout(), streams)
			return nil
		},
	}
}

func printStreams(out io.Writer, streams []*rtp.RtpStream) {
	for i, s := range streams {
		fmt.Fprintf(out, "\t(%2d) %s   %-6s %s  lost %d\n",
			i+1, s, codecs.Name(s.PayloadType), util.DurationToStr(s.Duration()), s.LostPackets)
	}
}
