package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Локальные отражения payload'ов событий. CLI разбирает только поля,
// нужные для печати; неизвестные поля игнорируются.

type planStartedPayload struct {
	PlanID     string `json:"planId"`
	Objective  string `json:"objective"`
	TotalSteps int    `json:"totalSteps"`
}

type stepStartedPayload struct {
	PlanID string `json:"planId"`
	StepID string `json:"stepId"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Index  int    `json:"index"`
}

type stepResultPayload struct {
	PlanID     string         `json:"planId"`
	StepID     string         `json:"stepId"`
	Kind       string         `json:"kind"`
	Status     string         `json:"status"`
	Summary    string         `json:"summary"`
	Snippet    *streamSnippet `json:"snippet"`
	Error      string         `json:"error"`
	DurationMs int64          `json:"durationMs"`
}

type streamSnippet struct {
	Records      []map[string]any `json:"records"`
	TotalRecords int              `json:"totalRecords"`
	Truncated    bool             `json:"truncated"`
}

type artifactReadyPayload struct {
	PlanID   string           `json:"planId"`
	StepID   string           `json:"stepId"`
	Artifact ArtifactResponse `json:"artifact"`
}

type planCompletedPayload struct {
	PlanID      string `json:"planId"`
	FinalStatus string `json:"finalStatus"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	DurationMs  int64  `json:"durationMs"`
}

type planErrorPayload struct {
	PlanID  string `json:"planId"`
	StepID  string `json:"stepId"`
	Message string `json:"message"`
}

func newPlanExecuteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var snippetLimit int
	var showRecords bool

	cmd := &cobra.Command{
		Use:   "execute PLAN_ID",
		Short: "Execute a plan and stream progress events",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			r := &eventRenderer{out: out, records: showRecords}
			if err := client.ExecutePlan(args[0], snippetLimit, r.render); err != nil {
				return err
			}

			// Прогон, остановленный ошибкой шага, — ненулевой код выхода.
			if r.planErr != "" {
				return fmt.Errorf("plan halted: %s", r.planErr)
			}
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().IntVar(&snippetLimit, "snippet-limit", 0, "Records per step snippet (server default if 0)")
	cmd.Flags().BoolVar(&showRecords, "records", false, "Print snippet records after each step result")

	return cmd
}

// eventRenderer печатает события потока по мере поступления.
// В --json режиме каждое событие выводится одной JSON-строкой.
type eventRenderer struct {
	out     *Output
	records bool

	total   int    // totalSteps из plan_started
	planErr string // message из plan_error, если был
}

func (r *eventRenderer) render(ev StreamEvent) {
	if r.out.jsonMode {
		r.renderJSON(ev)
		return
	}

	switch ev.Name {
	case "plan_started":
		var p planStartedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		r.total = p.TotalSteps
		r.out.Println(fmt.Sprintf("plan %s started: %s (%d steps)", p.PlanID, p.Objective, p.TotalSteps))

	case "step_started":
		var p stepStartedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		r.out.Println(fmt.Sprintf("%s %s %s: %s", r.position(p.Index), p.StepID, p.Kind, p.Title))

	case "step_result":
		var p stepResultPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		line := fmt.Sprintf("      %s %s in %s", p.StepID, p.Status, formatMs(p.DurationMs))
		if p.Summary != "" {
			line += ": " + p.Summary
		}
		if p.Error != "" {
			line += ": " + p.Error
		}
		r.out.Println(line)
		if r.records && p.Snippet != nil {
			for _, rec := range p.Snippet.Records {
				raw, err := json.Marshal(rec)
				if err != nil {
					continue
				}
				r.out.Println("        " + string(raw))
			}
			if p.Snippet.Truncated {
				r.out.Println(fmt.Sprintf("        ... %d records total", p.Snippet.TotalRecords))
			}
		}

	case "artifact_ready":
		var p artifactReadyPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		r.out.Println(fmt.Sprintf("      artifact %s: %s (%d bytes)", p.Artifact.ID, p.Artifact.Filename, p.Artifact.Bytes))

	case "plan_error":
		var p planErrorPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		r.planErr = p.Message
		r.out.Println(fmt.Sprintf("plan error at %s: %s", p.StepID, p.Message))

	case "plan_completed":
		var p planCompletedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		r.out.Println(fmt.Sprintf("plan completed: %d succeeded, %d failed in %s", p.Succeeded, p.Failed, formatMs(p.DurationMs)))
	}
}

// renderJSON выводит событие в той же форме, что и кадр сервера.
func (r *eventRenderer) renderJSON(ev StreamEvent) {
	raw, err := json.Marshal(struct {
		Type    string          `json:"type"`
		At      time.Time       `json:"at"`
		Payload json.RawMessage `json:"payload"`
	}{Type: ev.Name, At: ev.At, Payload: ev.Payload})
	if err != nil {
		return
	}
	r.out.Println(string(raw))

	if ev.Name == "plan_error" {
		var p planErrorPayload
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			r.planErr = p.Message
		}
	}
}

// position форматирует позицию шага как [i/n]; индекс события с нуля.
func (r *eventRenderer) position(index int) string {
	if r.total <= 0 {
		return fmt.Sprintf("[%d]", index+1)
	}
	return fmt.Sprintf("[%d/%d]", index+1, r.total)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
