package main

import (
	"fmt"
	"io"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/client"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
)

func renderResult(w io.Writer, r model.Result) {
	fmt.Fprintf(w, "%s  (%d%%)\n", r.Verdict.Label, r.Verdict.Confidence)
	fmt.Fprintf(w, "ID: %s  Domain: %s\n", r.ID, r.Domain)
	if r.Input != "" {
		fmt.Fprintf(w, "Input: %s\n", r.Input)
	}
	if b := r.Verdict.Breakdown; b != nil {
		fmt.Fprintf(w, "\nBreakdown: fact checks %d, sources %d, model %d, feasibility %d, cross-media %d\n",
			b.FactChecks, b.SourceCredibility, b.ModelConsensus, b.TechnicalFeasibility, b.CrossMedia)
	}

	fmt.Fprintln(w, "\nQuick analysis:")
	for _, f := range r.QuickAnalysis {
		fmt.Fprintf(w, "  %s %s\n", f.Icon, f.Text)
	}
	if len(r.Evidence) > 0 {
		fmt.Fprintln(w, "\nEvidence:")
		for _, e := range r.Evidence {
			fmt.Fprintf(w, "  - %s <%s>\n    %s\n", e.Title, e.URL, e.Note)
		}
	}
	fmt.Fprintln(w, "\nBefore you share:")
	for _, item := range r.EducationChecklist {
		fmt.Fprintf(w, "  ✓ %s\n", item)
	}
	fmt.Fprintf(w, "\n%s\n", r.SimpleExplanation)
}

func renderImage(w io.Writer, v model.ImageVerification) {
	fmt.Fprintf(w, "%s  (%d%%)\n", v.FactCheck.Label, v.FactCheck.Confidence)
	fmt.Fprintf(w, "Format: %s  Size: %d bytes  Manipulation score: %d/100\n",
		v.Forensic.Format, v.Forensic.SizeBytes, v.Forensic.ManipulationScore)
	fmt.Fprintf(w, "SHA-256: %s\n", v.Forensic.SHA256)
	for _, f := range v.Forensic.Findings {
		fmt.Fprintf(w, "  - %s\n", f)
	}
	if v.FactCheck.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", v.FactCheck.Summary)
	}
	for _, e := range v.Education {
		fmt.Fprintf(w, "  ✓ %s\n", e)
	}
}

func renderBatch(w io.Writer, claims []string, results []client.BatchResult) {
	for i, r := range results {
		claim := ""
		if i < len(claims) {
			claim = claims[i]
		}
		if !r.Success {
			fmt.Fprintf(w, "%2d. ✗ %s\n    error: %s\n", i+1, claim, r.Error)
			continue
		}
		fmt.Fprintf(w, "%2d. %s  (%d%%)  %s\n    %s\n", i+1, r.Result.Verdict.Label, r.Result.Verdict.Confidence, r.Result.ID, claim)
	}
}

func renderArchive(w io.Writer, entries []model.ArchiveEntry, total int) {
	fmt.Fprintf(w, "%d of %d analyses\n", len(entries), total)
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %-12s %3d%%  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.ID, e.Verdict, e.Confidence, e.Content)
	}
}

func renderEvent(w io.Writer, ev engine.Event) {
	switch ev.Type {
	case engine.EventMessage, engine.EventComplete:
		fmt.Fprintln(w, ev.Content)
	case engine.EventSectionStart:
		fmt.Fprintf(w, "\n%s\n", ev.Title)
	case engine.EventLine:
		fmt.Fprintf(w, "  %s\n", ev.Content)
	case engine.EventError:
		fmt.Fprintf(w, "❌ %s\n", ev.Content)
	}
}
