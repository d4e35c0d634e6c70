package p7

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.spec builtin/*.yaml
var builtinFS embed.FS

// GrammarExample is a single worked example shown to a model as part of a
// procedurally generated system prompt.
type GrammarExample struct {
	Text string `yaml:"text"`
	Note string `yaml:"note"`
}

// GrammarInfo is the metadata companion to a built-in Grammar: a
// human-readable description, a handful of syntax hints, and worked
// examples, all consumed by BuildSystemPrompt.
type GrammarInfo struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	SyntaxHints []string         `yaml:"syntax_hints"`
	Examples    []GrammarExample `yaml:"examples"`
}

var builtinNames = []string{"toy", "json", "stlc", "imp", "fun"}

type builtinEntry struct {
	spec    string
	grammar *Grammar
	info    GrammarInfo
	err     error
}

var (
	builtinOnce  sync.Once
	builtinTable map[string]*builtinEntry
)

func loadBuiltins() {
	builtinTable = make(map[string]*builtinEntry, len(builtinNames))
	for _, name := range builtinNames {
		entry := &builtinEntry{}

		specBytes, err := builtinFS.ReadFile("builtin/" + name + ".spec")
		if err != nil {
			entry.err = fmt.Errorf("p7: reading builtin grammar %q: %w", name, err)
			builtinTable[name] = entry
			continue
		}
		entry.spec = string(specBytes)
		g, err := Compile(entry.spec)
		if err != nil {
			entry.err = fmt.Errorf("p7: compiling builtin grammar %q: %w", name, err)
			builtinTable[name] = entry
			continue
		}
		entry.grammar = g

		yamlBytes, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
		if err != nil {
			entry.err = fmt.Errorf("p7: reading builtin grammar metadata %q: %w", name, err)
			builtinTable[name] = entry
			continue
		}
		var info GrammarInfo
		if err := yaml.Unmarshal(yamlBytes, &info); err != nil {
			entry.err = fmt.Errorf("p7: parsing builtin grammar metadata %q: %w", name, err)
			builtinTable[name] = entry
			continue
		}
		entry.info = info

		builtinTable[name] = entry
	}
}

// ListGrammars returns the names of the built-in grammars embedded in the
// p7 package: toy, json, stlc, imp, and fun.
func ListGrammars() []string {
	out := make([]string, len(builtinNames))
	copy(out, builtinNames)
	return out
}

// GetGrammar returns the compiled Grammar for a built-in grammar name.
func GetGrammar(name string) (*Grammar, error) {
	builtinOnce.Do(loadBuiltins)
	entry, ok := builtinTable[name]
	if !ok {
		return nil, fmt.Errorf("p7: unknown built-in grammar %q", name)
	}
	if entry.err != nil {
		return nil, entry.err
	}
	return entry.grammar, nil
}

// GetGrammarSpec returns the raw, uncompiled spec text for a built-in
// grammar, used to match an arbitrary caller-supplied spec against the
// registry (see pkg/p7/grammarsvc).
func GetGrammarSpec(name string) (string, error) {
	builtinOnce.Do(loadBuiltins)
	entry, ok := builtinTable[name]
	if !ok {
		return "", fmt.Errorf("p7: unknown built-in grammar %q", name)
	}
	if entry.err != nil {
		return "", entry.err
	}
	return entry.spec, nil
}

// GetGrammarInfo returns the descriptive metadata for a built-in grammar,
// used to build model-facing system prompts.
func GetGrammarInfo(name string) (GrammarInfo, error) {
	builtinOnce.Do(loadBuiltins)
	entry, ok := builtinTable[name]
	if !ok {
		return GrammarInfo{}, fmt.Errorf("p7: unknown built-in grammar %q", name)
	}
	if entry.err != nil {
		return GrammarInfo{}, entry.err
	}
	return entry.info, nil
}
