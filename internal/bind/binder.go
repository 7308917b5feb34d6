// Package bind maps a document format to the single type-tagged parameter
// sent with the import command.
package bind

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// paramSpec pairs a PostgreSQL type OID with a wire-format code.
type paramSpec struct {
	oid        uint32
	wireFormat int16
}

// specs is the closed format mapping. XML and BYTEA travel as their binary
// representation under an explicit type tag; TEXT travels untyped in text
// format so the server infers the type from the command.
var specs = map[pgimportdoc.Format]paramSpec{
	pgimportdoc.FormatXML:   {oid: pgtype.XMLOID, wireFormat: pgtype.BinaryFormatCode},
	pgimportdoc.FormatBytea: {oid: pgtype.ByteaOID, wireFormat: pgtype.BinaryFormatCode},
	pgimportdoc.FormatText:  {oid: 0, wireFormat: pgtype.TextFormatCode},
}

// Bind translates (format, buffer) into the run's single BoundParameter.
// No validation of document well-formedness happens client-side; that is
// the server's job.
func Bind(format pgimportdoc.Format, buf *pgimportdoc.DocumentBuffer) (pgimportdoc.BoundParameter, error) {
	spec, ok := specs[format]
	if !ok {
		return pgimportdoc.BoundParameter{}, fmt.Errorf("unsupported document format %v: %w", format, pgimportdoc.ErrInvalidConfig)
	}

	return pgimportdoc.BoundParameter{
		OID:        spec.oid,
		WireFormat: spec.wireFormat,
		Value:      buf.Data,
	}, nil
}
