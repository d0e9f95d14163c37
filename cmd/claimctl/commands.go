package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
	"github.com/joelkehle/claim-advocate/internal/letter"
	"github.com/joelkehle/claim-advocate/internal/mcptools"
)

// withApp builds the app for a one-shot command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	cc := getCLIContext(cmd)
	ctx := cmd.Context()
	a, err := buildApp(ctx, cc.cfg, cc.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			cc.log.Warn("close", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}

// readCase decodes an extracted case from path, or stdin when path is "-".
func readCase(cmd *cobra.Command, path string) (claims.ExtractedCase, error) {
	var blob []byte
	var err error
	if path == "-" {
		blob, err = io.ReadAll(cmd.InOrStdin())
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return claims.ExtractedCase{}, fmt.Errorf("read case: %w", err)
	}
	var ec claims.ExtractedCase
	if err := json.Unmarshal(blob, &ec); err != nil {
		return claims.ExtractedCase{}, fmt.Errorf("decode case %s: %w", path, err)
	}
	return ec, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(blob))
	return err
}

func newAnalyzeCommand() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "analyze <case.json|->",
		Short: "Score an extracted claim document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ec, err := readCase(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if save {
					c, err := a.svc.CreateCase(ctx, ec)
					if err != nil {
						return err
					}
					return printJSON(cmd, c)
				}
				ev, err := a.svc.Evaluate(ctx, ec, "")
				if err != nil {
					return err
				}
				return printJSON(cmd, ev.Analysis)
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the case and print the full record")
	return cmd
}

func newStrategyCommand() *cobra.Command {
	var preference string
	cmd := &cobra.Command{
		Use:   "strategy <case.json|->",
		Short: "Analyze a claim document and print the negotiation strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ec, err := readCase(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				ev, err := a.svc.Evaluate(ctx, ec, preference)
				if err != nil {
					return err
				}
				return printJSON(cmd, ev)
			})
		},
	}
	cmd.Flags().StringVar(&preference, "approach", "", "force an approach (aggressive, collaborative, data_driven, legal_threat, assertive)")
	return cmd
}

func newLetterCommand() *cobra.Command {
	var (
		req      letter.Request
		noRefs   bool
		htmlPath string
		pdfPath  string
	)
	cmd := &cobra.Command{
		Use:   "letter <case.json|->",
		Short: "Draft the negotiation letter for a claim document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ec, err := readCase(cmd, args[0])
			if err != nil {
				return err
			}
			if noRefs {
				include := false
				req.IncludeLegalReferences = &include
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				ev, err := a.svc.Evaluate(ctx, ec, "")
				if err != nil {
					return err
				}
				c := claims.NewCase(uuid.NewString(), ec.Normalize(), ev.Analysis, ev.Strategy, time.Now().UTC())
				l, err := a.svc.DraftFor(ctx, c, req)
				if err != nil {
					return err
				}
				if htmlPath != "" {
					doc, err := letter.RenderHTML(l)
					if err != nil {
						return err
					}
					if err := os.WriteFile(htmlPath, []byte(doc), 0o644); err != nil {
						return fmt.Errorf("write html: %w", err)
					}
				}
				if pdfPath != "" {
					pdf, err := a.svc.PrintLetter(ctx, l)
					if err != nil {
						return err
					}
					if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
						return fmt.Errorf("write pdf: %w", err)
					}
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\n\n%s", l.Subject, letter.Markdown(l))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&req.Tone, "tone", "", "professional, firm or friendly")
	cmd.Flags().StringVar(&req.UrgencyLevel, "urgency", "", "low, medium or high")
	cmd.Flags().StringSliceVar(&req.CustomPoints, "point", nil, "extra point to raise (repeatable)")
	cmd.Flags().BoolVar(&noRefs, "no-legal-references", false, "omit legal references")
	cmd.Flags().StringVar(&htmlPath, "html", "", "also write the HTML preview to this path")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also print the letter to this PDF path")
	return cmd
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				a.watchKnowledge(ctx)
				return server.ServeStdio(mcptools.NewServer(a.svc, Version))
			})
		},
	}
}

func newKBCommand() *cobra.Command {
	kb := &cobra.Command{
		Use:   "kb",
		Short: "Knowledge base utilities",
	}
	kb.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Load and validate a knowledge base file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := knowledge.Load(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok version=%s references=%d benchmarks=%d templates=%d precedents=%d\n",
				b.Version, len(b.References), len(b.Benchmarks), len(b.Templates), len(b.Precedents))
			return err
		},
	})
	return kb
}
