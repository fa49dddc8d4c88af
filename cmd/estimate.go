/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/smartcvd/db"
	"github.com/humaidq/smartcvd/intake"
	"github.com/humaidq/smartcvd/report"
)

const (
	formatText = "text"
	formatCSV  = "csv"
)

var CmdEstimate = newEstimateCommand()

func newEstimateCommand() *cli.Command {
	d := intake.DefaultForm()

	return &cli.Command{
		Name:  "estimate",
		Usage: "Estimate CVD risk for a single profile",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "age", Value: d.Age, Usage: "age in years"},
			&cli.StringFlag{Name: "sex", Value: d.Sex, Usage: "Male or Female"},
			&cli.FloatFlag{Name: "weight", Value: d.WeightKg, Usage: "weight in kg"},
			&cli.FloatFlag{Name: "height", Value: d.HeightCm, Usage: "height in cm"},
			&cli.BoolFlag{Name: "smoker", Usage: "current smoker"},
			&cli.BoolFlag{Name: "diabetes", Usage: "diabetes diagnosis"},
			&cli.IntFlag{Name: "egfr", Value: d.EGFR, Usage: "eGFR in mL/min/1.73m²"},
			&cli.IntFlag{Name: "sbp", Value: d.SystolicBP, Usage: "systolic blood pressure in mmHg"},
			&cli.FloatFlag{Name: "tc", Value: d.TotalCholesterol, Usage: "total cholesterol in mmol/L"},
			&cli.FloatFlag{Name: "hdl", Value: d.HDL, Usage: "HDL cholesterol in mmol/L"},
			&cli.FloatFlag{Name: "ldl", Value: d.LDL, Usage: "LDL cholesterol in mmol/L"},
			&cli.FloatFlag{Name: "crp", Value: d.HsCRP, Usage: "hs-CRP in mg/L"},
			&cli.FloatFlag{Name: "hba1c", Value: d.HbA1c, Usage: "HbA1c in %"},
			&cli.FloatFlag{Name: "tg", Value: d.Triglycerides, Usage: "triglycerides in mmol/L"},
			&cli.StringFlag{Name: "prior-statin", Value: d.PriorStatin, Usage: "statin already taken (None, Atorvastatin, Rosuvastatin)"},
			&cli.BoolFlag{Name: "prior-ezetimibe", Usage: "ezetimibe already taken"},
			&cli.BoolFlag{Name: "prior-bempedoic", Usage: "bempedoic acid already taken"},
			&cli.StringFlag{Name: "new-statin", Value: d.NewStatin, Usage: "statin to start (None, Atorvastatin, Rosuvastatin)"},
			&cli.BoolFlag{Name: "add-ezetimibe", Usage: "ezetimibe to add"},
			&cli.BoolFlag{Name: "add-bempedoic", Usage: "bempedoic acid to add"},
			&cli.StringFlag{Name: "format", Value: formatText, Usage: "output format (text or csv)"},
			&cli.BoolFlag{Name: "save", Usage: "store the assessment in the database"},
			&cli.StringFlag{Name: "label", Usage: "label for a saved assessment"},
			&cli.StringFlag{
				Name:    "database-url",
				Sources: cli.EnvVars("DATABASE_URL"),
				Usage:   "PostgreSQL connection string, required with --save",
			},
		},
		Action: estimate,
	}
}

func formFromFlags(cmd *cli.Command) intake.Form {
	return intake.Form{
		Age:              cmd.Int("age"),
		Sex:              cmd.String("sex"),
		WeightKg:         cmd.Float("weight"),
		HeightCm:         cmd.Float("height"),
		Smoker:           cmd.Bool("smoker"),
		Diabetes:         cmd.Bool("diabetes"),
		EGFR:             cmd.Int("egfr"),
		SystolicBP:       cmd.Int("sbp"),
		TotalCholesterol: cmd.Float("tc"),
		HDL:              cmd.Float("hdl"),
		LDL:              cmd.Float("ldl"),
		HsCRP:            cmd.Float("crp"),
		HbA1c:            cmd.Float("hba1c"),
		Triglycerides:    cmd.Float("tg"),
		PriorStatin:      cmd.String("prior-statin"),
		PriorEzetimibe:   cmd.Bool("prior-ezetimibe"),
		PriorBempedoic:   cmd.Bool("prior-bempedoic"),
		NewStatin:        cmd.String("new-statin"),
		AddEzetimibe:     cmd.Bool("add-ezetimibe"),
		AddBempedoic:     cmd.Bool("add-bempedoic"),
	}
}

func estimate(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	if format != formatText && format != formatCSV {
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	form := formFromFlags(cmd)

	result, err := form.Estimate()
	if err != nil {
		return fmt.Errorf("failed to estimate risk: %w", err)
	}

	w := cmd.Root().Writer
	switch format {
	case formatCSV:
		err = report.WriteCSV(w, result)
	default:
		err = report.WriteText(w, result)
	}
	if err != nil {
		return err
	}

	if !cmd.Bool("save") {
		return nil
	}

	databaseURL := cmd.String("database-url")
	if databaseURL == "" {
		return errDatabaseURLRequired
	}

	// Set DATABASE_URL for db package
	if err := os.Setenv("DATABASE_URL", databaseURL); err != nil {
		return fmt.Errorf("failed to set DATABASE_URL: %w", err)
	}

	if err := db.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.SyncSchema(ctx); err != nil {
		return fmt.Errorf("failed to sync schema: %w", err)
	}

	var label *string
	if l := strings.TrimSpace(cmd.String("label")); l != "" {
		label = &l
	}

	id, err := db.CreateAssessment(ctx, db.CreateAssessmentInput{
		Label:  label,
		Form:   form,
		Result: result,
	})
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	cliLogger.Info("Saved assessment", "assessment_id", id)
	return nil
}
