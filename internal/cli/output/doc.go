// Package output renders command results as a table, JSON or YAML.
//
// Tables render a struct as FIELD/VALUE rows and a slice of structs as one
// row per element, with column names taken from the json tag. A field
// tagged `table:"-"` is never shown and `table:"wide"` only with --wide.
package output
