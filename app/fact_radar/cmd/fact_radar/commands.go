package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/sse"
)

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <claim...>",
		Short: "Analyze a text claim",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client.Analyze(cmd.Context(), strings.Join(args, " "), opts.Lang)
			if err != nil {
				return err
			}
			return opts.print(cmd, res, func() { renderResult(cmd.OutOrStdout(), res) })
		},
	}
}

func newBatchCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch [claim...]",
		Short: "Analyze up to 10 claims in one request",
		Long:  "Analyze several claims at once. Claims come from the arguments, or one per line from --file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := args
			if file != "" {
				lines, err := readLines(file)
				if err != nil {
					return err
				}
				claims = append(claims, lines...)
			}
			res, err := opts.client.AnalyzeBatch(cmd.Context(), claims, opts.Lang)
			if err != nil {
				return err
			}
			return opts.print(cmd, res, func() { renderBatch(cmd.OutOrStdout(), claims, res) })
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one claim per line")
	return cmd
}

func newURLCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "url <link>",
		Short: "Analyze the article behind a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client.AnalyzeURL(cmd.Context(), args[0], opts.Lang)
			if err != nil {
				return err
			}
			return opts.print(cmd, res, func() { renderResult(cmd.OutOrStdout(), res) })
		},
	}
}

func newImageCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "image <file>",
		Short: "Run forensic checks on an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := readImage(args[0])
			if err != nil {
				return err
			}
			res, err := opts.client.VerifyImage(cmd.Context(), encoded, opts.Lang)
			if err != nil {
				return err
			}
			return opts.print(cmd, res, func() { renderImage(cmd.OutOrStdout(), res) })
		},
	}
}

func newStreamCommand(opts *rootOptions) *cobra.Command {
	var asURL, asImage bool
	cmd := &cobra.Command{
		Use:   "stream <claim...>",
		Short: "Analyze with live progress",
		Long: `Analyze with live progress events from the analyzer.

Example:
  fact_radar stream "Vaccines contain microchips"
  fact_radar stream --url https://example.com/story
  fact_radar stream --image ./photo.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var streamErr error
			h := sse.Handlers{
				OnMessage: func(msg json.RawMessage) {
					if opts.JSON {
						fmt.Fprintln(cmd.OutOrStdout(), string(msg))
						return
					}
					var ev engine.Event
					if err := json.Unmarshal(msg, &ev); err != nil {
						return
					}
					renderEvent(cmd.OutOrStdout(), ev)
					if ev.Type == engine.EventError {
						streamErr = fmt.Errorf("analysis failed: %s", ev.Content)
					}
				},
				OnError: func(err error) { streamErr = err },
			}

			switch {
			case asImage:
				encoded, err := readImage(args[0])
				if err != nil {
					return err
				}
				opts.client.StreamImage(cmd.Context(), encoded, opts.Lang, h)
			case asURL:
				opts.client.StreamAnalysis(cmd.Context(), model.ContentTypeURL, args[0], opts.Lang, h)
			default:
				opts.client.StreamAnalysis(cmd.Context(), model.ContentTypeText, strings.Join(args, " "), opts.Lang, h)
			}
			return streamErr
		},
	}
	cmd.Flags().BoolVar(&asURL, "url", false, "treat the argument as a link")
	cmd.Flags().BoolVar(&asImage, "image", false, "treat the argument as an image file")
	cmd.MarkFlagsMutuallyExclusive("url", "image")
	return cmd
}

func newResultCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "result <id>",
		Short: "Fetch a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client.GetResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd, res, func() { renderResult(cmd.OutOrStdout(), res) })
		},
	}
}

func newTranslateCommand(opts *rootOptions) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "translate <text...>",
		Short: "Translate text through the analyzer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.client.Translate(cmd.Context(), strings.Join(args, " "), target)
			return opts.print(cmd, map[string]string{"translated": out}, func() {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&target, "to", "en", "target language")
	return cmd
}

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List recent analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client.Archive(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return opts.print(cmd, res, func() { renderArchive(cmd.OutOrStdout(), res.Analyses, res.Total) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max entries (server default 20, max 100)")
	return cmd
}

// print 按 --json 选择输出格式
func (o *rootOptions) print(cmd *cobra.Command, v any, text func()) error {
	if !o.JSON {
		text()
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readLines 读取非空行
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
