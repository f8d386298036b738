package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/flarexio/ragger"

	mcpE "github.com/flarexio/ragger/mcp"
	natsT "github.com/flarexio/ragger/transport/nats"
)

// StdioMCPServer answers newline-delimited JSON-RPC requests read from in.
type StdioMCPServer struct {
	endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint
	in        *bufio.Reader
	out       io.Writer
}

func NewStdioMCPServer(in io.Reader, out io.Writer) *StdioMCPServer {
	return &StdioMCPServer{
		endpoints: make(map[mcp.MCPMethod]mcpE.MCPEndpoint),
		in:        bufio.NewReader(in),
		out:       out,
	}
}

func (s *StdioMCPServer) AddEndpoint(method mcp.MCPMethod, endpoint mcpE.MCPEndpoint) error {
	if _, ok := s.endpoints[method]; ok {
		return errors.New("endpoint already exists: " + string(method))
	}

	s.endpoints[method] = endpoint
	return nil
}

// Serve handles requests until the input is exhausted or ctx is done.
func (s *StdioMCPServer) Serve(ctx context.Context) error {
	lines := make(chan string)
	errs := make(chan error, 1)

	go s.readLines(ctx, lines, errs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}

			reply, ok := s.handle(ctx, line)
			if !ok {
				continue
			}

			if _, err := s.out.Write(append(reply, '\n')); err != nil {
				return err
			}
		}
	}
}

// readLines has no line length limit; tool arguments may carry long prompts.
func (s *StdioMCPServer) readLines(ctx context.Context, lines chan<- string, errs chan<- error) {
	defer close(lines)

	for {
		line, err := s.in.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				errs <- err
			}

			return
		}
	}
}

// handle returns the encoded reply to one request. Malformed lines and
// notifications get no reply.
func (s *StdioMCPServer) handle(ctx context.Context, line string) ([]byte, bool) {
	var req mcpE.JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return nil, false
	}

	if req.ID.IsNil() {
		return nil, false
	}

	var resp mcp.JSONRPCMessage
	if endpoint, ok := s.endpoints[req.Method]; ok {
		resp = endpoint(ctx, req)
	} else {
		resp = mcpE.ErrorResponse(req.ID, mcp.METHOD_NOT_FOUND, "method not found")
	}

	bs, err := json.Marshal(resp)
	if err != nil {
		return nil, false
	}

	return bs, true
}

func main() {
	cmd := &cli.Command{
		Name:  "ragger_mcp_server",
		Usage: "Ragger MCP Server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL",
				Value:   nats.DefaultURL,
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
			&cli.StringFlag{
				Name:     "edge-id",
				Usage:    "Edge ID of the ragger service",
				Required: true,
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	edgeID := cmd.String("edge-id")

	opts := []nats.Option{
		nats.Name("Ragger MCP Server - " + edgeID),
	}

	if creds := cmd.String("nats-creds"); creds != "" {
		opts = append(opts, nats.UserCredentials(creds))
	}

	nc, err := nats.Connect(cmd.String("nats"), opts...)
	if err != nil {
		return err
	}
	defer nc.Drain()

	endpoints := natsT.MakeEndpoints(nc, natsT.Topic(edgeID))

	var svc ragger.Service
	svc = ragger.ProxyMiddleware(endpoints)(svc)

	s := NewStdioMCPServer(os.Stdin, os.Stdout)
	for method, endpoint := range mcpE.Endpoints(svc) {
		if err := s.AddEndpoint(method, endpoint); err != nil {
			return err
		}
	}

	err = s.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
