package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
)

// ingestRecord is the file format for one score row.
type ingestRecord struct {
	ScenarioID string    `json:"scenarioId" yaml:"scenarioId"`
	Score      float64   `json:"score" yaml:"score"`
	Accuracy   float64   `json:"accuracy" yaml:"accuracy"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Load practice scores into the store",
	Long: `Read a JSON or YAML file of practice scores and append them to the
activity store. Timestamps default to now when omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read scores file: %w", err)
		}

		var records []ingestRecord
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse YAML scores: %w", err)
			}
		default:
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse JSON scores: %w", err)
			}
		}
		if len(records) == 0 {
			return fmt.Errorf("no records found in %s", args[0])
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		for i, r := range records {
			if r.ScenarioID == "" {
				return fmt.Errorf("record %d: scenarioId is required", i)
			}
			rec := activity.Record{
				UserID:     user,
				ScenarioID: r.ScenarioID,
				Score:      r.Score,
				Accuracy:   r.Accuracy,
				Timestamp:  r.Timestamp,
			}
			if err := a.store.Insert(ctx, rec); err != nil {
				return fmt.Errorf("insert record %d: %w", i, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d records for %s\n", len(records), user)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
