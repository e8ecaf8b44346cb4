// Package conversion converts a column of one scalar type into a new
// column of another.
//
// # Compatibility
//
// Only the directed pairs below are supported; IsSupported is false for
// every other pair, identity pairs included.
//
//	String    -> Int, DateTime, Boolean, Double, Duration
//	Int       -> String, DateTime, Boolean, Double
//	DateTime  -> String, Double, Duration
//	Boolean   -> String, Int
//	Double    -> String, Int, Boolean, DateTime
//	Duration  -> String
//
// The table is derived from the conversion rules themselves, so a pair is
// supported exactly when a rule exists for it.
//
// # Plans
//
// A Request is compiled once into an immutable Plan that holds the output
// column and its rule. Unsupported pairs fail in Compile with a
// configuration error; after that, converting a row never fails. A value
// that cannot be converted yields the target type's sentinel (see
// models.Sentinel) together with the fallback annotation, "N/A" unless
// configured.
//
//	plan, err := conversion.Compile(conversion.Request{
//		Source: models.NewColumn("amount", models.String),
//		Target: models.Double,
//	})
//	if err != nil {
//		return err
//	}
//	header.AddColumns(plan.Output())
//	for _, row := range rows {
//		plan.Apply(row)
//	}
//
// Sentinels double as valid values: a source that parses to the minimum
// Int, the minimum Double, the zero DateTime or a zero Duration is treated
// as a failed conversion.
//
// # Operators
//
// Operator wraps a plan for the pipeline. It resolves the source column by
// name, parses the target type name, adds one column to the header and
// fills it row by row, counting fallbacks.
package conversion
