package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/mahudhurio/core/attendance"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp    = errors.New("help provided")
	errNoStore = errors.New("no database configured; set DB_HOST et al")
)

type commandLine struct {
	recRepo attendance.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  hashpassword - hash an operator password for the OPERATORPASSWORDHASH setting")
	fmt.Println("  exportreport [-session SESSION_ID] [-from RFC3339] [-to RFC3339] -out FILE - export attendance records as CSV")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	exportCmd := flag.NewFlagSet("exportreport", flag.ExitOnError)
	exportSession := exportCmd.String("session", "", "Only include records for this session id.")
	exportFrom := exportCmd.String("from", "", "Only include records submitted at or after this RFC3339 timestamp.")
	exportTo := exportCmd.String("to", "", "Only include records submitted at or before this RFC3339 timestamp.")
	exportOut := exportCmd.String("out", "", "Destination CSV file.")

	switch args[1] {
	case "hashpassword":
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	case "exportreport":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		filter := attendance.QueryFilter{SessionID: *exportSession}
		var err error
		if filter.SubmittedFrom, err = parseTimeFlag(*exportFrom); err != nil {
			return err
		}
		if filter.SubmittedTo, err = parseTimeFlag(*exportTo); err != nil {
			return err
		}
		return cli.exportReport(filter, *exportOut)
	default:
		cli.printUsage()
		return errHelp
	}
}

func parseTimeFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: must be RFC3339", raw)
	}
	return t, nil
}

func (cli *commandLine) exportReport(filter attendance.QueryFilter, out string) error {
	if cli.recRepo == nil {
		return errNoStore
	}
	recs, err := cli.recRepo.FilterRecords(filter)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := attendance.WriteReportCSV(f, recs); err != nil {
		return err
	}
	fmt.Printf("wrote %d record(s) to %s\n", len(recs), out)
	return nil
}
