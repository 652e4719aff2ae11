package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewPlanCmd создаёт группу команд для управления планами.
func NewPlanCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage plans",
	}

	cmd.AddCommand(
		newPlanListCmd(clientFn, outputFn),
		newPlanSubmitCmd(clientFn, outputFn),
		newPlanValidateCmd(clientFn, outputFn),
		newPlanGenerateCmd(clientFn, outputFn),
		newPlanShowCmd(clientFn, outputFn),
		newPlanExecuteCmd(clientFn, outputFn),
	)

	return cmd
}

func newPlanListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			plans, err := client.ListPlans()
			if err != nil {
				return err
			}

			headers := []string{"PLAN_ID", "OBJECTIVE", "STEPS", "STORED"}
			rows := make([][]string, len(plans))
			for i, p := range plans {
				rows[i] = []string{p.PlanID, truncate(p.Objective, 48), strconv.Itoa(len(p.Steps)), p.StoredAt}
			}

			out.Print(headers, rows, plans)
			return nil
		},
	}
}

func newPlanSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate and store a plan from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			raw, err := readPlanFile(planFile)
			if err != nil {
				return err
			}

			plan, err := client.SubmitPlan(raw)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plan stored: %s", plan.PlanID))
			printPlan(out, plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "file", "", "Path to plan JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newPlanValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a plan without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			raw, err := readPlanFile(planFile)
			if err != nil {
				return err
			}

			report, err := client.ValidatePlan(raw)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plan %s is valid: %d steps", report.PlanID, report.Steps))
			for _, warning := range report.Warnings {
				out.Success("Warning: " + warning)
			}
			out.Print(
				[]string{"PLAN_ID", "OBJECTIVE", "STEPS"},
				[][]string{{report.PlanID, truncate(report.Objective, 48), strconv.Itoa(report.Steps)}},
				report,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "file", "", "Path to plan JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newPlanGenerateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var objective string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a plan from an objective",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			plan, err := client.GeneratePlan(objective)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plan generated: %s", plan.PlanID))
			printPlan(out, plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&objective, "objective", "", "Objective in free form (required)")
	cmd.MarkFlagRequired("objective")

	return cmd
}

func newPlanShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show PLAN_ID",
		Short: "Show plan steps and statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			plan, err := client.GetPlan(args[0])
			if err != nil {
				return err
			}

			printPlan(out, plan)
			return nil
		},
	}
}

// printPlan выводит план таблицей шагов (или JSON в --json режиме).
func printPlan(out *Output, plan *PlanResponse) {
	headers := []string{"#", "STEP_ID", "KIND", "STATUS", "TITLE", "SUMMARY"}
	rows := make([][]string, len(plan.Steps))
	for i, s := range plan.Steps {
		summary := s.OutputSummary
		if s.Error != "" {
			summary = "error: " + s.Error
		}
		rows[i] = []string{
			strconv.Itoa(i + 1), s.ID, s.Kind, s.Status,
			truncate(s.Title, 32), truncate(summary, 56),
		}
	}

	out.Println(fmt.Sprintf("Plan %s: %s", plan.PlanID, plan.Objective))
	out.Print(headers, rows, plan)
}

// readPlanFile читает файл плана и проверяет, что это корректный JSON.
// Содержимое не разбирается: валидация — работа сервера.
func readPlanFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("plan file is not valid JSON")
	}
	return json.RawMessage(data), nil
}

// truncate укорачивает строку для табличного вывода.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
