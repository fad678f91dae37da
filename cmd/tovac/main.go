package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"

	"tovac/pkg/compiler"
	"tovac/pkg/deploy"
)

const usage = `usage:
  tovac build [-emit tokens|ast|js] <file.tova>
  tovac deploy [-out dir] [-assets dir] [-log-json file] [-verbose] <file.tova>
  tovac repl
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "deploy":
		err = runDeploy(os.Args[2:])
	case "repl":
		err = runRepl()
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "tovac:", err)
		os.Exit(1)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	emit := fs.String("emit", "js", "what to print: tokens, ast, or js")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file")
	}

	src, sourceName, err := readSource(fs.Arg(0))
	if err != nil {
		return err
	}

	switch *emit {
	case "tokens":
		tokens, err := compiler.Lex(src)
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		return nil

	case "ast":
		tokens, err := compiler.Lex(src)
		if err != nil {
			return err
		}
		prog, err := compiler.Parse(tokens, src)
		if err != nil {
			return err
		}
		for _, stmt := range prog.Body {
			fmt.Println(" ", stmt)
		}
		return nil

	case "js":
		result, err := compiler.Compile(src, sourceName, compiler.DefaultOptions())
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(os.Stderr, warning.String())
		}
		fmt.Print(result.Sections[compiler.SectionShared])
		return nil

	default:
		return fmt.Errorf("unknown -emit value %q", *emit)
	}
}

func runDeploy(args []string) error {
	opts, files, err := deploy.ParseFlags("tovac deploy", args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("expected exactly one source file")
	}

	src, sourceName, err := readSource(files[0])
	if err != nil {
		return err
	}

	log, cleanup, err := deploy.NewLogger(os.Stderr, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := compiler.Compile(src, sourceName, compiler.DefaultOptions())
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		log.Warn(warning.Message, "source", sourceName, "line", warning.Line)
	}
	return deploy.Deploy(log, result.Sections, opts)
}

// runRepl reads statements line by line and shows how each one lowers.
// A single emitter persists across lines so repeated assignments to the
// same name stay redeclaration-free.
func runRepl() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	base := compiler.NewBaseCodegen()
	for {
		input, err := line.Prompt("tova> ")
		switch err {
		case nil:
		case io.EOF, liner.ErrPromptAborted:
			fmt.Println()
			return nil
		default:
			return err
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		tokens, err := compiler.Lex(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		prog, err := compiler.Parse(tokens, input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		for _, stmt := range prog.Body {
			text, err := base.GenerateStatement(stmt)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Print(text)
		}
	}
}

func readSource(path string) (src, sourceName string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), path, nil
}
