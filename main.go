// Command extractaudio lists the RTP streams of a capture file and decodes
// one of them into a WAV file. G.729 audio is approximate: the built-in
// decoder is not bit-exact with the ITU reference.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vocalocity/rtpproxy-pre-2-0/esp"
	"github.com/Vocalocity/rtpproxy-pre-2-0/log"
	"github.com/Vocalocity/rtpproxy-pre-2-0/rtp"
)

type globalOptions struct {
	logLevel string
	espKeys  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "extractaudio",
		Short: "Extract call audio from RTP captures",
		Long: `extractaudio reads pcap and pcapng captures, groups RTP packets by SSRC
and rebuilds the audio of a stream as 8 kHz 16-bit mono WAV.

Lost packets and silence periods are filled in from the RTP timestamps
and the capture times. Supported payloads are G.711 (PCMU, PCMA) and G.729.
G.711 is decoded exactly. The G.729 decoder is not bit-exact with the ITU
reference, so G.729 streams come out as an intelligible approximation of
the call rather than a faithful copy.

Examples:
  extractaudio streams call.pcap
  extractaudio extract call.pcap -o leg1.wav --ssrc 0x1a2b3c4d
  extractaudio --esp-keys keys.txt extract ipsec.pcapng -o call.wav`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: error, warn, info, debug, trace")
	cmd.PersistentFlags().StringVar(&opts.espKeys, "esp-keys", "", "file with ESP keys (spi algorithm key [icv-length] per line)")

	cmd.AddCommand(newStreamsCmd(opts), newExtractCmd(opts), newCodecsCmd())
	return cmd
}

func openReader(opts *globalOptions, path string) (*rtp.RtpReader, error) {
	var readerOpts []rtp.ReaderOption
	if opts.espKeys != "" {
		keys, err := esp.LoadKeyFile(opts.espKeys)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"keys": keys.Len(), "file": opts.espKeys}).Debug("Loaded ESP keys")
		readerOpts = append(readerOpts, rtp.WithKeyring(keys))
	}
	return rtp.NewRtpReader(path, readerOpts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
