package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a password (prompted)")
	fmt.Fprintln(cli.out, "  checkweights -file FILE - replay a YAML criteria file through the weight rules")
	fmt.Fprintln(cli.out, "  checkseed [-file FILE] - validate a seed dataset (default: the embedded one)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	hashPasswordCmd := flag.NewFlagSet("hashpassword", flag.ContinueOnError)
	hashPasswordCmd.SetOutput(cli.out)

	checkWeightsCmd := flag.NewFlagSet("checkweights", flag.ContinueOnError)
	checkWeightsCmd.SetOutput(cli.out)
	checkWeightsFile := checkWeightsCmd.String("file", "", "The YAML criteria file.")

	checkSeedCmd := flag.NewFlagSet("checkseed", flag.ContinueOnError)
	checkSeedCmd.SetOutput(cli.out)
	checkSeedFile := checkSeedCmd.String("file", "", "The YAML seed file. Defaults to the embedded dataset.")

	switch args[1] {
	case "hashpassword":
		if err := hashPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			hashPasswordCmd.Usage()
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	case "checkweights":
		if err := checkWeightsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *checkWeightsFile == "" {
			checkWeightsCmd.Usage()
			return errHelp
		}
		return cli.checkWeights(*checkWeightsFile)
	case "checkseed":
		if err := checkSeedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.checkSeed(*checkSeedFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
