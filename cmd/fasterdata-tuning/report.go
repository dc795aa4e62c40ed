package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"fasterdata-tuning/internal/application/usecases"
	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/services"

	"github.com/dustin/go-humanize"
)

// Report는 사람이 읽는 실행 결과 요약입니다. 로그와 달리 stdout으로 나갑니다.
type Report struct {
	Source     string
	Facts      *services.HostFacts
	Output     *usecases.ApplyTuningOutput
	Persisted  *usecases.PersistSysctlOutput
	PersistErr error
}

// Write는 요약을 w에 출력합니다
func (r *Report) Write(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Catalogue: %s (%d directives)\n", r.Source, r.Output.TotalCount)
	if r.Facts != nil {
		fmt.Fprintf(&b, "Host: %s, interfaces %s, max link speed %s, max MTU %d\n",
			r.Facts.OS, strings.Join(r.Facts.Interfaces, ","), services.FormatLinkSpeed(r.Facts.MaxSpeedBps), r.Facts.MaxMTU)
	}
	if r.Output.DryRun {
		b.WriteString("Dry run: no changes were made\n")
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tDIRECTIVE\tCURRENT\tDESIRED\tDETAIL")
	for _, rep := range r.Output.Reports {
		fmt.Fprintln(tw, strings.Join(reportRow(rep), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(&b, "\napplied=%d unchanged=%d planned=%d mismatched=%d failed=%d elapsed=%s\n",
		r.Output.AppliedCount, r.Output.NoOpCount, r.Output.PlannedCount,
		r.Output.MismatchCount, r.Output.FailedCount, r.Output.Duration.Round(time.Millisecond))

	if p := r.Persisted; p != nil && p.Entries > 0 {
		switch {
		case !p.Changed:
			fmt.Fprintf(&b, "%s: managed sysctl block already up to date\n", p.Path)
		case p.Written && p.BackupPath != "":
			fmt.Fprintf(&b, "%s: managed sysctl block written (backup %s)\n", p.Path, p.BackupPath)
		case p.Written:
			fmt.Fprintf(&b, "%s: managed sysctl block written\n", p.Path)
		default:
			fmt.Fprintf(&b, "%s: would write managed sysctl block:\n%s", p.Path, p.Block)
		}
	}

	if r.PersistErr != nil {
		fmt.Fprintf(&b, "warning: managed sysctl block not written, values are lost on reboot: %v\n", r.PersistErr)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func reportRow(rep usecases.DirectiveReport) []string {
	result := rep.Result
	d := result.Directive()
	target := string(d.Scope()) + "." + d.Key()
	if d.TargetInterface() != "" {
		target = fmt.Sprintf("%s[%s].%s", d.Scope(), d.TargetInterface(), d.Key())
	}

	current := "-"
	if previous, ok := result.PreviousValue(); ok {
		current = humanValue(d, previous)
	}
	desired := humanValue(d, rep.Desired)

	switch {
	case result.Failed():
		return []string{"FAILED", target, current, desired, result.Err().Error()}
	case result.Applied():
		return []string{"APPLIED", target, current, desired, "now " + humanValue(d, result.CurrentValue())}
	case result.VerifyMismatch():
		return []string{"MISMATCH", target, current, desired, "verify only, not changed"}
	case result.Decision() == entities.DecisionChange:
		return []string{"PLANNED", target, current, desired, strings.Join(rep.Command, " ")}
	default:
		return []string{"OK", target, current, desired, ""}
	}
}

// humanValue는 메모리 크기 sysctl 값에 IEC 단위를 덧붙입니다 (67108864 -> "67108864 (64 MiB)")
func humanValue(d entities.TuningDirective, value string) string {
	if d.Scope() != entities.ScopeSysctl || !strings.Contains(d.Key(), "mem") {
		return value
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil || n < 1024 {
		return value
	}
	return fmt.Sprintf("%s (%s)", value, humanize.IBytes(n))
}
