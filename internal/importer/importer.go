// Package importer runs the import pipeline: connect, optionally set the
// client encoding, buffer the input, bind it as one parameter, execute, and
// print at most one result value.
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/pgimportdoc/internal/bind"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// Importer executes one import run. Control flows strictly downstream
// through the stages; only the Connector's internal password retry revisits
// a stage.
type Importer struct {
	connector pgimportdoc.Connector
	loader    pgimportdoc.DocumentLoader
	logger    pgimportdoc.Logger
	out       io.Writer
}

// New creates an Importer with all dependencies injected.
//
// Panics if any dependency is nil. This is intentional fail-fast behavior:
// a nil dependency is a programmer error in the wiring, not a runtime
// condition.
func New(connector pgimportdoc.Connector, loader pgimportdoc.DocumentLoader, logger pgimportdoc.Logger, out io.Writer) *Importer {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if out == nil {
		panic("out cannot be nil")
	}

	return &Importer{
		connector: connector,
		loader:    loader,
		logger:    logger,
		out:       out,
	}
}

// Run performs the whole pipeline for one invocation. The session is
// released on every exit path.
func (im *Importer) Run(ctx context.Context, cfg *pgimportdoc.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	encoding := cfg.Encoding
	if encoding != "" && cfg.Format != pgimportdoc.FormatText {
		// The bytes travel as opaque binary for XML and BYTEA, so a text
		// encoding cannot apply. Permissive by long-standing behavior.
		im.logger.Warn("encoding is used only for type TEXT")
		encoding = ""
	}

	session, err := im.connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if encoding != "" {
		im.logger.Verbose("execute command: SET client_encoding TO %s", encoding)
		status, err := session.SetClientEncoding(ctx, encoding)
		if err != nil {
			return err
		}
		im.logger.Verbose("Set encoding result status: %s", status)
	}

	buf, err := im.loader.Load(ctx)
	if err != nil {
		return err
	}
	im.logger.Verbose("Buffered data of size: %d", buf.Len())

	param, err := bind.Bind(cfg.Format, buf)
	if err != nil {
		return err
	}

	result, err := session.ExecDocument(ctx, cfg.Command, param)
	if err != nil {
		return err
	}
	im.logger.Verbose("Result status: %s", result.Status)

	im.report(result)
	return nil
}

// report prints the single data value, if any, and warns when the result
// set is wider than the contract.
func (im *Importer) report(result pgimportdoc.ExecutionResult) {
	if !result.RowsReturned {
		return
	}

	if result.RowCount > 1 || result.ColumnCount > 1 {
		im.logger.Warn("only first column of first row is displayed")
	}

	if result.HasValue {
		fmt.Fprintln(im.out, result.Value)
	}
}
