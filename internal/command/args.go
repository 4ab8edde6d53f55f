package command

import (
	"fmt"
	"strings"
)

// Flag is a Unix-style flag a command may accept, e.g. --reverse (or
// its shorthand -r).
type Flag struct {
	Name        string
	Alias       rune
	Doc         string
	TakesValue  bool
	Completions []string
}

// Signature declares how many positional arguments a command accepts,
// which flags it recognizes, and where (if anywhere) normal quoting
// rules stop applying.
type Signature struct {
	// MinPositionals/MaxPositionals bound the accepted positional count;
	// MaxPositionals of -1 means unbounded.
	MinPositionals int
	MaxPositionals int

	Flags []Flag

	// RawAfter, if >= 0, is the number of positionals to parse with
	// normal quoting/flag rules before treating the rest of the line as
	// one unprocessed Raw token.
	RawAfter int
}

// DefaultSignature accepts no positionals, no flags, and applies normal
// quoting to the whole line.
var DefaultSignature = Signature{MinPositionals: 0, MaxPositionals: -1, RawAfter: -1}

func (s Signature) findFlag(name string) (Flag, bool) {
	for _, f := range s.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

func (s Signature) findFlagByAlias(alias rune) (Flag, bool) {
	for _, f := range s.Flags {
		if f.Alias == alias {
			return f, true
		}
	}
	return Flag{}, false
}

// FlagValue is either a boolean presence marker or a flag's associated
// value.
type FlagValue struct {
	Present  bool
	Value    string
	HasValue bool
}

// Args is a command line parsed against a Signature: positional
// arguments in order, plus whichever flags were present.
type Args struct {
	Signature   Signature
	positionals []string
	flags       map[string]FlagValue
}

// Len returns the number of positional arguments.
func (a Args) Len() int { return len(a.positionals) }

// IsEmpty reports whether there are no positional arguments.
func (a Args) IsEmpty() bool { return len(a.positionals) == 0 }

// Get returns the positional argument at index, or "" if out of range.
func (a Args) Get(index int) string {
	if index < 0 || index >= len(a.positionals) {
		return ""
	}
	return a.positionals[index]
}

// First returns the first positional argument, or "" if there are none.
func (a Args) First() string { return a.Get(0) }

// Join concatenates every positional argument with sep.
func (a Args) Join(sep string) string { return strings.Join(a.positionals, sep) }

// GetFlag returns a flag's value and whether it was present at all.
func (a Args) GetFlag(name string) (string, bool) {
	v, ok := a.flags[name]
	if !ok {
		return "", false
	}
	return v.Value, true
}

// HasFlag reports whether a boolean (or value) flag was present.
func (a Args) HasFlag(name string) bool {
	_, ok := a.flags[name]
	return ok
}

// ParseArgsError reports a problem matching tokens against a Signature:
// an unknown flag, a missing flag value, or a positional count outside
// the declared range.
type ParseArgsError struct {
	Message string
}

func (e *ParseArgsError) Error() string { return "command line: " + e.Message }

// ParseArgs tokenizes rest and matches the resulting tokens against
// signature: flags are recognized up until signature.RawAfter
// positionals have been read (if RawAfter >= 0), after which every
// remaining token — including ones that look like flags — is taken as
// a literal positional, and the tail is returned as a single raw token
// once that count is hit.
//
// expand resolves one expandable token (Expand or Expansion) to its
// literal text; pass nil to leave expandable tokens as their token
// content verbatim (used during completion, where expansions aren't
// evaluated).
func ParseArgs(rest string, signature Signature, validate bool, expand func(Token) (string, error)) (Args, error) {
	tz := NewTokenizer(rest, validate)
	args := Args{Signature: signature, flags: make(map[string]FlagValue)}

	resolve := func(t Token) (string, error) {
		if t.IsExpandable() && expand != nil {
			return expand(t)
		}
		return t.Content, nil
	}

	rawAfter := signature.RawAfter

	for {
		if rawAfter >= 0 && len(args.positionals) >= rawAfter {
			if raw, ok := tz.Rest(); ok {
				args.positionals = append(args.positionals, raw.Content)
			}
			break
		}

		tok, ok, err := tz.Next()
		if err != nil {
			return Args{}, err
		}
		if !ok {
			break
		}

		if tok.Kind == TokenUnquoted && strings.HasPrefix(tok.Content, "--") && len(tok.Content) > 2 {
			name := tok.Content[2:]
			flag, known := signature.findFlag(name)
			if !known {
				if validate {
					return Args{}, &ParseArgsError{Message: fmt.Sprintf("unknown flag --%s", name)}
				}
				args.flags[name] = FlagValue{Present: true}
				continue
			}
			if err := consumeFlagValue(&tz, &args, flag, validate, resolve); err != nil {
				return Args{}, err
			}
			continue
		}
		if tok.Kind == TokenUnquoted && strings.HasPrefix(tok.Content, "-") && len(tok.Content) == 2 {
			alias := rune(tok.Content[1])
			flag, known := signature.findFlagByAlias(alias)
			if !known {
				if validate {
					return Args{}, &ParseArgsError{Message: fmt.Sprintf("unknown flag -%c", alias)}
				}
				args.flags[string(alias)] = FlagValue{Present: true}
				continue
			}
			if err := consumeFlagValue(&tz, &args, flag, validate, resolve); err != nil {
				return Args{}, err
			}
			continue
		}

		text, err := resolve(tok)
		if err != nil {
			return Args{}, err
		}
		args.positionals = append(args.positionals, text)
	}

	if validate {
		if len(args.positionals) < signature.MinPositionals {
			return Args{}, &ParseArgsError{Message: "not enough arguments"}
		}
		if signature.MaxPositionals >= 0 && len(args.positionals) > signature.MaxPositionals {
			return Args{}, &ParseArgsError{Message: "too many arguments"}
		}
	}

	return args, nil
}

func consumeFlagValue(tz *Tokenizer, args *Args, flag Flag, validate bool, resolve func(Token) (string, error)) error {
	if !flag.TakesValue {
		args.flags[flag.Name] = FlagValue{Present: true}
		return nil
	}
	tok, ok, err := tz.Next()
	if err != nil {
		return err
	}
	if !ok {
		if validate {
			return &ParseArgsError{Message: fmt.Sprintf("flag --%s requires a value", flag.Name)}
		}
		args.flags[flag.Name] = FlagValue{Present: true}
		return nil
	}
	text, err := resolve(tok)
	if err != nil {
		return err
	}
	args.flags[flag.Name] = FlagValue{Present: true, Value: text, HasValue: true}
	return nil
}
