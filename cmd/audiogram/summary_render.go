package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"audiogram/internal/pipeline"
	"audiogram/internal/workflow"
)

func printSummary(out io.Writer, summary *workflow.Summary, colorize bool) {
	for _, ep := range summary.Episodes {
		for _, line := range renderSectionHeader(fmt.Sprintf("Episode %d: %s", ep.Episode, ep.Title), colorize) {
			fmt.Fprintln(out, line)
		}
		if ep.TranscriptDiscarded {
			fmt.Fprintln(out, renderStatusLine("Transcript", statusWarn, "malformed, captions use soundbite titles", colorize))
		}
		if ep.Err != nil {
			fmt.Fprintln(out, renderStatusLine("Episode", statusError, ep.Err.Error(), colorize))
		}
		if len(ep.Soundbites) == 0 {
			if ep.Err == nil {
				fmt.Fprintln(out, renderStatusLine("Soundbites", statusInfo, "none declared", colorize))
			}
			continue
		}
		if summary.DryRun {
			fmt.Fprintln(out, dryRunTable(ep))
		} else {
			fmt.Fprintln(out, renderTable(renderRows(ep)))
		}
		for _, sb := range ep.Soundbites {
			if !summary.DryRun && sb.Status != pipeline.StatusSucceeded && sb.Err != nil {
				fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Soundbite %d", sb.Number), kindForStatus(sb.Status), sb.Err.Error(), colorize))
			}
			for _, w := range sb.Warnings {
				fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Soundbite %d", sb.Number), statusWarn, w.Message, colorize))
			}
			for _, err := range sb.SidecarErrors {
				fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Soundbite %d", sb.Number), statusWarn, err.Error(), colorize))
			}
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, summaryLine(summary, colorize))
}

func dryRunTable(ep pipeline.EpisodeResult) string {
	spec := tableSpec{
		Headers: []string{"#", "Start", "End", "Duration", "Text"},
		Aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	}
	for _, sb := range ep.Soundbites {
		if sb.DryRun == nil {
			spec.Rows = append(spec.Rows, []string{fmt.Sprint(sb.Number), "-", "-", "-", errorText(sb.Err)})
			continue
		}
		rec := sb.DryRun
		spec.Rows = append(spec.Rows, []string{
			fmt.Sprint(rec.Soundbite),
			formatSeconds(rec.Start),
			formatSeconds(rec.End),
			formatSeconds(rec.Duration),
			truncate(rec.Text, 80),
		})
	}
	return renderTable(spec)
}

func renderRows(ep pipeline.EpisodeResult) tableSpec {
	spec := tableSpec{
		Headers: []string{"Soundbite", "Format", "Status", "Duration", "Output"},
		Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	}
	for _, sb := range ep.Soundbites {
		if len(sb.Renders) == 0 {
			spec.Rows = append(spec.Rows, []string{fmt.Sprint(sb.Number), "-", string(sb.Status), "-", truncate(errorText(sb.Err), 80)})
			continue
		}
		for _, r := range sb.Renders {
			output := filepath.Base(r.Path)
			if r.Err != nil {
				output = truncate(r.Err.Error(), 80)
			}
			spec.Rows = append(spec.Rows, []string{
				fmt.Sprint(sb.Number),
				r.Format,
				string(r.Status),
				fmt.Sprintf("%.2fs", r.Duration),
				output,
			})
		}
	}
	return spec
}

func summaryLine(summary *workflow.Summary, colorize bool) string {
	c := summary.Counts()
	elapsed := summary.Elapsed.Round(100 * time.Millisecond)
	if summary.DryRun {
		return renderStatusLine("Dry run", statusInfo, fmt.Sprintf("%d soundbites in %d episodes resolved in %s", c.Soundbites, c.Episodes, elapsed), colorize)
	}
	kind := statusOK
	if summary.Failed() {
		kind = statusError
	}
	message := fmt.Sprintf("%d/%d soundbites, %d/%d videos rendered in %s", c.SoundbitesOK, c.Soundbites, c.RendersOK, c.Renders, elapsed)
	return renderStatusLine("Summary", kind, message, colorize)
}

// formatSeconds shows seconds alongside HH:MM:SS.mmm.
func formatSeconds(v float64) string {
	if math.IsNaN(v) || v < 0 {
		return "-"
	}
	ms := int64(math.Round(v * 1000))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%.3fs (%02d:%02d:%02d.%03d)", v, h, m, s, ms%1000)
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
