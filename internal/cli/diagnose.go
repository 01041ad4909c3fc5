package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medqa/internal/model"
)

var (
	diagnoseCommon  int
	diagnoseTimeout time.Duration
)

// diagnoseCmd represents the diagnose command
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <symptom>...",
	Short: "Rank diseases matching a set of symptoms",
	Long: `Diagnose looks up each symptom in the knowledge graph and ranks the
diseases by how many of the given symptoms they match.

This is not medical advice.

Example:
  medqa diagnose 发热 咳嗽 头痛
  medqa diagnose --common 30`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().IntVar(&diagnoseCommon, "common", 0, "list the N most common symptoms instead")
	diagnoseCmd.Flags().DurationVar(&diagnoseTimeout, "timeout", time.Minute, "overall timeout")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	if diagnoseCommon <= 0 && len(args) == 0 {
		return fmt.Errorf("at least one symptom is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), diagnoseTimeout)
	defer cancel()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown(context.Background())

	out := cmd.OutOrStdout()
	if diagnoseCommon > 0 {
		symptoms, err := a.pipeline.CommonSymptoms(ctx, diagnoseCommon)
		if err != nil {
			return fmt.Errorf("common symptoms: %w", err)
		}
		fmt.Fprintln(out, strings.Join(symptoms, "、"))
		return nil
	}

	diagnoses, err := a.pipeline.Diagnose(ctx, args)
	if err != nil {
		return fmt.Errorf("diagnose: %w", err)
	}
	printDiagnoses(out, args, diagnoses)
	return nil
}

func printDiagnoses(w io.Writer, symptoms []string, diagnoses []model.Diagnosis) {
	if len(diagnoses) == 0 {
		fmt.Fprintf(w, "未找到与「%s」匹配的疾病\n", strings.Join(symptoms, "、"))
		return
	}
	fmt.Fprintf(w, "根据症状「%s」，可能的疾病：\n\n", strings.Join(symptoms, "、"))
	for i, d := range diagnoses {
		fmt.Fprintf(w, "%d. %s  匹配度 %d%%\n", i+1, d.Disease, d.MatchRate)
		fmt.Fprintf(w, "   匹配症状: %s\n", strings.Join(d.MatchedSymptoms, "、"))
		if len(d.RelatedSymptoms) > 0 {
			fmt.Fprintf(w, "   相关症状: %s\n", strings.Join(d.RelatedSymptoms, "、"))
		}
	}
	fmt.Fprintln(w, "\n⚠️ 以上结果仅供参考，请以医生诊断为准。")
}
