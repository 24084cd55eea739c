package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry       bool   `help:"Show timing telemetry for operations."`
	EnvFile         string `help:"Load environment variables (such as PYTHONHASHSEED) from this file." default:".env"`
	BookingMethod   string `help:"Default booking method: FIFO, LIFO, AVERAGE or STRICT."`
	HashSeed        string `help:"PYTHONHASHSEED used to order tags and links (defaults to the environment)."`
	MaxIncludeDepth int    `help:"Maximum include nesting depth (0 for unbounded)." default:"0"`
}

type Commands struct {
	Globals

	Analyze AnalyzeCmd `cmd:"" help:"Analyze a ledger file and report its diagnostics."`
	Report  ReportCmd  `cmd:"" help:"Render a summary report of a ledger file."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging ledger files."`
}
