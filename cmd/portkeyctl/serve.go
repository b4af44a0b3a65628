package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nordholt/portkey/server"
	"github.com/nordholt/portkey/wire"
)

func serveCmd() *cobra.Command {
	var (
		port             int
		messageLen       int
		codeHex          string
		handshakeTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a Coded-handshake echo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(codeHex)
			if err != nil {
				return err
			}

			cfg := server.DefaultConfig()
			cfg.Port = port
			cfg.MessageLen = messageLen
			cfg.HandshakeTimeout = handshakeTimeout

			srv, err := server.NewServer[*wire.Code, struct{}](cfg, func() wire.Codec[*wire.Code, struct{}] {
				return wire.NewCoded()
			})
			if err != nil {
				return err
			}
			defer srv.Deinit()

			if err := srv.Listen(&code); err != nil {
				return err
			}
			fmt.Printf("listening on :%d (message length %d)\n", port, messageLen)

			cb := server.Callbacks[struct{}]{
				OnOpen: func(h server.Handle, _ struct{}) {
					fmt.Printf("conn %d open\n", h)
				},
				OnMessage: func(h server.Handle, body []byte) {
					fmt.Printf("conn %d: %q\n", h, body)
					srv.Send(h, body) // echo
				},
				OnClose: func(h server.Handle) {
					fmt.Printf("conn %d closed\n", h)
				},
			}

			for {
				if err := srv.Poll(cb); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "listen port")
	cmd.Flags().IntVar(&messageLen, "message-len", 64, "fixed application message length")
	cmd.Flags().StringVar(&codeHex, "code", "", "32 hex chars (16 bytes) shared code; random if empty")
	cmd.Flags().DurationVar(&handshakeTimeout, "handshake-timeout", 5*time.Second, "max time a connection may stay mid-handshake")

	return cmd
}
