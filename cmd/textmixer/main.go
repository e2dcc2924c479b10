/*
textmixer (Entry Point)

This tool obfuscates and restores text with reversible, table-driven character
substitution. Rule tables are YAML documents; see `textmixer rules generate`.

It is not encryption and gives no confidentiality guarantees.
*/
package main

import (
	"github.com/whit3rabbit/textmixer/cmd/textmixer/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
