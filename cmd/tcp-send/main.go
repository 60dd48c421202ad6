// tcp-send performs one request/response exchange against a TCP server,
// using the same client state machine the firmware runs on-device. Handy
// for exercising a server from a workstation before flashing.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	"picolink-go/drivers/tcpclient"
)

func main() {
	app := cli.NewApp()
	app.Name = "tcp-send"
	app.Usage = "send one payload to a TCP server and print the response"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server,s",
			Value: "127.0.0.1",
			Usage: "server IPv4 address (dotted decimal)",
		},
		cli.UintFlag{
			Name:  "port,p",
			Value: 9000,
			Usage: "server TCP port",
		},
		cli.StringFlag{
			Name:  "data,d",
			Usage: "payload to send",
		},
		cli.DurationFlag{
			Name:  "connect-timeout",
			Value: tcpclient.DefaultConnectTimeout,
			Usage: "connect phase budget",
		},
		cli.DurationFlag{
			Name:  "response-timeout",
			Value: tcpclient.DefaultResponseTimeout,
			Usage: "response phase budget, restarted after the write",
		},
		cli.BoolFlag{
			Name:  "quiet,q",
			Usage: "suppress progress output",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	data := c.String("data")
	if data == "" {
		return fmt.Errorf("--data is required")
	}
	port := c.Uint("port")
	if port == 0 || port > 65535 {
		return fmt.Errorf("--port out of range")
	}

	cfg := tcpclient.Config{
		ServerIP:        c.String("server"),
		ServerPort:      uint16(port),
		ConnectTimeout:  c.Duration("connect-timeout"),
		ResponseTimeout: c.Duration("response-timeout"),
	}
	if !c.Bool("quiet") {
		cfg.Status = func(msg string) { fmt.Fprintln(os.Stderr, msg) }
	}

	client, err := tcpclient.New(tcpclient.NewHostStack(), cfg)
	if err != nil {
		return fmt.Errorf("bad configuration: %v", err)
	}

	started := time.Now()
	resp, err := client.Send([]byte(data))
	if err != nil {
		return fmt.Errorf("%v after %v", err, time.Since(started).Round(time.Millisecond))
	}

	os.Stdout.Write(resp.Data)
	fmt.Println()
	fmt.Fprintf(os.Stderr, "%d bytes in %d ms", resp.Len, resp.RoundTripMs)
	if !resp.Success {
		fmt.Fprintf(os.Stderr, " (no acknowledgment: %s)", tcpclient.ErrorString(resp.Code))
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
