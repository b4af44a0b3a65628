package main

import (
	"bufio"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/nordholt/portkey/client"
	"github.com/nordholt/portkey/wire"
)

func dialCmd() *cobra.Command {
	var (
		host       string
		port       int
		messageLen int
		codeHex    string
	)

	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Connect to a Coded-handshake server and echo stdin lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(codeHex)
			if err != nil {
				return err
			}
			ip, err := parseIPv4(host)
			if err != nil {
				return err
			}

			sock, err := client.DialTCP(ip, port)
			if err != nil {
				return err
			}

			cl, err := client.New[*wire.Code, struct{}](client.DefaultConfig(), client.WithMessageLen(messageLen))
			if err != nil {
				return err
			}
			defer cl.Close()

			if err := cl.Connect(sock, wire.NewCoded(), &code); err != nil {
				return err
			}

			opened := false
			for !opened {
				if err := cl.Poll(client.Events[struct{}]{
					OnOpen: func(struct{}) { opened = true },
				}); err != nil {
					return err
				}
			}
			fmt.Println("connected")

			scanner := bufio.NewScanner(os.Stdin)
			go func() {
				for scanner.Scan() {
					body := make([]byte, messageLen)
					copy(body, scanner.Bytes())
					if err := cl.Send(body); err != nil {
						fmt.Fprintf(os.Stderr, "send: %v\n", err)
						return
					}
				}
			}()

			for cl.IsOpen() {
				if err := cl.Poll(client.Events[struct{}]{
					OnMessage: func(body []byte) { fmt.Printf("echo: %q\n", body) },
					OnClose:   func() { fmt.Println("connection closed") },
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "server IPv4 address")
	cmd.Flags().IntVar(&port, "port", 8081, "server port")
	cmd.Flags().IntVar(&messageLen, "message-len", 64, "fixed application message length")
	cmd.Flags().StringVar(&codeHex, "code", "", "32 hex chars (16 bytes) shared code")

	return cmd
}

func parseIPv4(host string) ([4]byte, error) {
	var out [4]byte
	ip := net.ParseIP(host)
	if ip == nil {
		return out, fmt.Errorf("invalid --host %q", host)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return out, fmt.Errorf("--host %q is not an IPv4 address", host)
	}
	copy(out[:], ip4)
	return out, nil
}
