// Package aligner wraps the external subtitle alignment analyzer. The tool
// receives a reference and a target SRT path and emits a JSON document on
// stdout with the matched anchor pairs. Everything downstream (robust
// statistics, classification) happens in internal/anchors; this package only
// runs the tool and decodes its output.
package aligner
