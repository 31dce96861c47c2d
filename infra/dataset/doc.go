// Package dataset loads planning problems from files. Two layouts are
// supported: three CSV files (a Jira issue export, a release calendar and a
// worker roster) or a single YAML document holding all three sections.
package dataset
