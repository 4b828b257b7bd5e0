// Package askcmder provides the ask command: send a single question to a
// running clipper API server and stream the answer back.
package askcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipperhq/clipper/pkg/cliui"
	"github.com/clipperhq/clipper/pkg/config"
	"github.com/clipperhq/clipper/pkg/logger"
	"github.com/clipperhq/clipper/pkg/sse"
)

type askCommander struct {
	apiTarget string

	configDir string
	debug     bool

	logger *slog.Logger
}

const askLongDesc string = `Ask a question against a running clipper server.

The server must have ingested articles already (clipper serve + POST
/v1/ingest). The answer streams token by token, followed by the source
URLs it was grounded in.

Examples:
  clipper ask "What did the article say about interest rates?"
  clipper ask --api-target http://research-box:8080 "Who was quoted?"`

const askShortDesc string = "Ask a running clipper server a question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.ClipperFlags, []string{config.FlagAPITarget})

			cmder.apiTarget = v.GetString("client.api_target")

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, config.ClipperFlags, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *askCommander) run(question string) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	askURL := fmt.Sprintf("%s/v1/ask?question=%s",
		strings.TrimRight(c.apiTarget, "/"),
		url.QueryEscape(question),
	)

	c.logger.Debug("asking", "target", c.apiTarget)

	// No client timeout: the answer streams for as long as generation runs.
	resp, err := http.Get(askURL)
	if err != nil {
		return fmt.Errorf("reaching clipper server at %s: %w", c.apiTarget, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	fmt.Print(cliui.DimStyle.Render("answer> "))
	sources, err := streamAnswer(os.Stdout, resp.Body)
	if err != nil {
		fmt.Println()
		return err
	}

	fmt.Println()
	fmt.Println(cliui.RenderSources(sources))

	return nil
}

// streamAnswer writes token events to w as they arrive and returns the
// source list from the terminal sources event.
func streamAnswer(w io.Writer, body io.Reader) ([]string, error) {
	var sources []string

	reader := sse.NewReader(body)
	for {
		event, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading answer stream: %w", err)
		}
		if event == nil {
			// Stream ended without a done event; the connection dropped.
			return sources, nil
		}

		switch event.Type {
		case "token":
			var tok struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal([]byte(event.Data), &tok); err != nil {
				return nil, fmt.Errorf("decoding token event: %w", err)
			}
			fmt.Fprint(w, tok.Text)
		case "sources":
			var src struct {
				Sources []string `json:"sources"`
			}
			if err := json.Unmarshal([]byte(event.Data), &src); err != nil {
				return nil, fmt.Errorf("decoding sources event: %w", err)
			}
			sources = src.Sources
		case "error":
			var errResp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal([]byte(event.Data), &errResp); err != nil {
				return nil, fmt.Errorf("decoding error event: %w", err)
			}
			return nil, fmt.Errorf("answer failed: %s", errResp.Error)
		case "done":
			return sources, nil
		}
	}
}

// serverError turns a non-200 response into an error, preferring the
// server's own error message when the body carries one.
func serverError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
	}

	return fmt.Errorf("server returned %d", resp.StatusCode)
}
