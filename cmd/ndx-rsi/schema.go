package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/ndx-rsi/internal/config"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
)

const schemaFileName = "ndx-rsi.schema.json"

func (a *app) schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "config-schema",
		Usage: "Write the JSON schema of the configuration and a sample configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Directory to write into. Without it the schema is printed.",
			},
		},
		Action: a.schemaAction,
	}
}

func (a *app) schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	dir := cmd.String("output")
	if dir == "" {
		_, err := a.out.Write([]byte(schema + "\n"))

		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create %s", dir)
	}

	schemaPath := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write %s", schemaPath)
	}

	w := a.out

	// an existing sample is never overwritten
	samplePath := filepath.Join(dir, config.DefaultFileName)
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		data, err := config.Default().Marshal()
		if err != nil {
			return err
		}

		data = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), data...)
		if err := os.WriteFile(samplePath, data, 0o644); err != nil {
			return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write %s", samplePath)
		}

		fmt.Fprintf(w, "Sample config generated at %s\n", samplePath)
	}

	fmt.Fprintf(w, "Schema generated at %s\n", schemaPath)

	return nil
}
