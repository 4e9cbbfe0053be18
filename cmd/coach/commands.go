package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"career-booster/internal/advisor"
	"career-booster/internal/bootstrap"
	"career-booster/internal/shared/config"
	"career-booster/internal/shared/telemetry"
	"career-booster/internal/workflow"
)

type runOptions struct {
	resumePath  string
	role        string
	roundType   string
	answersPath string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "coach",
		Short:         "Run resume analysis and interview practice from the command line",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.Configure(logLevel, "console")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	root.AddCommand(newSkillsCmd(), newRunCmd())
	return root
}

func newSkillsCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Extract skills and suggest job roles for a resume",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			ctrl, s, err := uploadResume(ctx, opts.resumePath)
			if err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), cmd.ErrOrStderr(), ctrl.View(s))
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "path to a PDF resume (required)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall timeout")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Walk the whole workflow: upload, role, gaps, questions, answers, feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runWorkflow(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "path to a PDF resume (required)")
	cmd.Flags().StringVar(&opts.role, "role", "", "job role to target (defaults to the first suggestion)")
	cmd.Flags().StringVar(&opts.roundType, "round", advisor.DefaultRoundType, "interview round type")
	cmd.Flags().StringVarP(&opts.answersPath, "answers", "a", "", "file whose line i answers question i; blank lines are empty answers (optional)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall timeout")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func runWorkflow(ctx context.Context, out, errOut io.Writer, opts runOptions) error {
	ctrl, s, err := uploadResume(ctx, opts.resumePath)
	if err != nil {
		return err
	}

	role := strings.TrimSpace(opts.role)
	if role == "" {
		if len(s.JobRoles) == 0 {
			return printView(out, errOut, ctrl.View(s))
		}
		role = s.JobRoles[0]
	}
	if err := ctrl.SelectRole(s, role); err != nil {
		return fmt.Errorf("select role: %w", err)
	}
	if err := ctrl.FindMissingSkills(ctx, s); err != nil {
		return fmt.Errorf("missing skills: %w", err)
	}
	if err := ctrl.GenerateQuestions(ctx, s, opts.roundType); err != nil {
		return fmt.Errorf("questions: %w", err)
	}
	if err := printView(out, errOut, ctrl.View(s)); err != nil {
		return err
	}

	if opts.answersPath == "" {
		return nil
	}
	answers, err := readAnswers(opts.answersPath)
	if err != nil {
		return err
	}
	if err := ctrl.SetAnswers(s, answers); err != nil {
		return fmt.Errorf("answers: %w", err)
	}
	if err := ctrl.SubmitAnswers(ctx, s); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return printView(out, errOut, ctrl.View(s))
}

func uploadResume(ctx context.Context, path string) (*workflow.Controller, *workflow.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read resume: %w", err)
	}
	ctrl, err := bootstrap.NewController(ctx, config.Load())
	if err != nil {
		return nil, nil, err
	}
	s := ctrl.NewSession()
	if err := ctrl.Upload(ctx, s, filepath.Base(path), data); err != nil {
		return nil, nil, fmt.Errorf("upload: %w", err)
	}
	return ctrl, s, nil
}

// readAnswers maps line i of the file to answer slot i. Blank lines stay as
// empty answers so later answers keep their question.
func readAnswers(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	content := strings.TrimSuffix(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if content == "" {
		return nil, nil
	}
	answers := strings.Split(content, "\n")
	if len(answers) > workflow.NumAnswers {
		return nil, fmt.Errorf("answers file has %d lines, max %d", len(answers), workflow.NumAnswers)
	}
	for i := range answers {
		answers[i] = strings.TrimSpace(answers[i])
	}
	return answers, nil
}

var noticeColor = color.New(color.FgYellow, color.Bold)

// printView writes the page view as JSON to out and its notices to errOut.
func printView(out, errOut io.Writer, view workflow.PageView) error {
	for _, notice := range view.Notices {
		noticeColor.Fprintf(errOut, "! %s\n", notice)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
