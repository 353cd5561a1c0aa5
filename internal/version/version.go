package version

// Version is the semantic version of the orchestrator. Overridden at build
// time via -ldflags.
var Version = "0.1.0"
