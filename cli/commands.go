package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Format FormatCmd `cmd:"" help:"Reformat a ledger journal with canonical indentation and amount alignment."`
	Check  CheckCmd  `cmd:"" help:"Verify that a ledger journal is formatted, showing a diff when it is not."`
	Dump   DumpCmd   `cmd:"" help:"Show the syntax tree of a ledger journal."`
}
