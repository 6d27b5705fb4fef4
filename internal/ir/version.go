package ir

// Version is the vanilla release reported by the CLI.
const Version = "0.1.0"
