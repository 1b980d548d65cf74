package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Vocalocity/rtpproxy-pre-2-0/codecs"
	"github.com/Vocalocity/rtpproxy-pre-2-0/console"
	"github.com/Vocalocity/rtpproxy-pre-2-0/decoder"
	"github.com/Vocalocity/rtpproxy-pre-2-0/log"
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
	"github.com/Vocalocity/rtpproxy-pre-2-0/util"
	"github.com/Vocalocity/rtpproxy-pre-2-0/wav"
)

type extractOptions struct {
	output     string
	ssrc       string
	maxSilence uint32
	force      bool
}

func newExtractCmd(global *globalOptions) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <capture>",
		Short: "Decode one RTP stream into a WAV file",
		Long: `Decode one RTP stream into a WAV file.

The stream is picked with --ssrc. Without it a capture holding a single
stream is used directly, otherwise the streams are listed and one is
chosen interactively. The output file is asked for when -o is missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, global, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output WAV file")
	cmd.Flags().StringVar(&opts.ssrc, "ssrc", "", "SSRC of the stream to decode (decimal or 0x hex)")
	cmd.Flags().Uint32Var(&opts.maxSilence, "max-silence", decoder.DefaultMaxSilenceTicks, "largest silence block in 8 kHz ticks")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite the output file without asking")
	return cmd
}

func runExtract(cmd *cobra.Command, global *globalOptions, opts *extractOptions, path string) error {
	if opts.maxSilence == 0 || opts.maxSilence > decoder.MaxSilenceTicksLimit {
		return fmt.Errorf("--max-silence must be between 1 and %d ticks", decoder.MaxSilenceTicksLimit)
	}
	reader, err := openReader(global, path)
	if err != nil {
		return err
	}
	defer reader.Close()

	con := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	stream, err := chooseStream(con, reader.GetStreams(), opts.ssrc)
	if err != nil {
		return err
	}
	if c, ok := codecs.Lookup(stream.PayloadType); !ok {
		log.Swarn("Stream 0x%08X starts with unsupported payload type %d", stream.Ssrc, stream.PayloadType)
	} else if c.Kind == codecs.Speech {
		log.Swarn("Stream 0x%08X is %s: decoded audio approximates the original", stream.Ssrc, c.Name)
	}

	output, err := chooseOutput(con, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := wav.NewWriter(f)
	if err != nil {
		return err
	}

	fields := log.Fields{"function": "extract", "ssrc": fmt.Sprintf("0x%08X", stream.Ssrc)}
	dec := decoder.New(stream,
		decoder.WithMaxSilenceTicks(opts.maxSilence),
		decoder.WithLogger(log.WithFields(fields)))
	defer dec.Close()

	_, copyErr := io.Copy(w, dec)
	if err := w.Close(); err != nil {
		return err
	}
	if copyErr != nil {
		return fmt.Errorf("decoding stream 0x%08X: %w", stream.Ssrc, copyErr)
	}

	st := dec.Stats()
	log.WithFields(fields).WithField("silence_ticks", st.SilenceTicks).
		WithField("decoded", st.PacketsDecoded).
		WithField("skipped", st.PacketsSkipped).
		WithField("reanchors", st.Reanchors).
		Debug("Stream decoded")

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d samples, %s)\n",
		output, w.Samples(), util.DurationToStr(util.TicksToDuration(uint64(w.Samples()))))
	return nil
}

func chooseStream(con *console.Console, streams []*rtp.RtpStream, ssrc string) (*rtp.RtpStream, error) {
	if len(streams) == 0 {
		return nil, errors.New("no RTP streams found")
	}
	if ssrc != "" {
		v, err := strconv.ParseUint(ssrc, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SSRC %q: %w", ssrc, err)
		}
		for _, s := range streams {
			if s.Ssrc == uint32(v) {
				return s, nil
			}
		}
		return nil, fmt.Errorf("no stream with SSRC 0x%08X", v)
	}
	if len(streams) == 1 {
		return streams[0], nil
	}

	n, err := con.ExpectIntRange(1, len(streams), func(out io.Writer, attempts int) error {
		if attempts == 0 {
			fmt.Fprintln(out, "Choose RTP stream:")
			printStreams(out, streams)
		}
		return console.Prompt("[n]: ")(out, attempts)
	})
	if err != nil {
		return nil, err
	}
	return streams[n-1], nil
}

func chooseOutput(con *console.Console, opts *extractOptions) (string, error) {
	output := opts.output
	if output == "" {
		var err error
		if output, err = con.ExpectAnyString(console.Prompt("Output file: ")); err != nil {
			return "", err
		}
	}
	if opts.force {
		return output, nil
	}
	if _, err := os.Stat(output); err == nil {
		answer, err := con.ExpectRestrictedString([]string{"y", "n"},
			console.Prompt(fmt.Sprintf("%s exists, overwrite? [y/n]: ", output)))
		if err != nil {
			return "", err
		}
		if answer != "y" {
			return "", fmt.Errorf("not overwriting %s", output)
		}
	}
	return output, nil
}
