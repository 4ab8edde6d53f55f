// Package command implements the ex-style command line: tokenizing a
// typed ":" command into quoted/expanded arguments, matching those
// arguments against a command's declared Signature, and the Mode/Keymap
// state machine that routes a keypress to either an editing command or
// the command line itself.
//
// Tokenizing handles three kinds of quoting — 'single'/`backtick`
// (literal, doubled-quote escape), "double" (further expandable), and
// %{...} percent expansions (%u{...} for a Unicode codepoint, %sh{...}
// for a shell pipe, bare %{...} for a variable) — plus a Signature's
// RawAfter cutoff, past which the remaining input is returned as one
// unprocessed token so commands like :set-option can parse their own
// tail (e.g. a JSON value) without fighting the tokenizer's quoting
// rules.
package command
