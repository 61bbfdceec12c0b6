// Package render turns engine results into terminal output: styled text and
// tables for humans, JSON or YAML for machines. Every human readable string
// goes through a localized message printer.
package render
