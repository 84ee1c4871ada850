package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/mahudhurio/core/attendance"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
)

func setup(t *testing.T) (*commandLine, attendance.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewAttendanceRepository(db)
	return &commandLine{recRepo: repo}, repo
}

func seedRecord(t *testing.T, repo attendance.Repository, sessionID, studentID string, at time.Time) attendance.Record {
	t.Helper()
	rec, err := repo.AppendRecord(attendance.Record{
		SessionID:         sessionID,
		StudentName:       "Student " + studentID,
		StudentID:         studentID,
		DeviceFingerprint: "device-" + studentID,
		Latitude:          12.9716,
		Longitude:         77.5946,
		SubmittedAt:       at,
	})
	if err != nil {
		t.Fatalf("AppendRecord() failed: %v", err)
	}
	return rec
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // fed to the password prompt
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_hashPassword(t *testing.T) {
	cli, _ := setup(t)
	defer func() { readPasswordFunc = term.ReadPassword }()

	tests := []cliTest{
		{name: "empty password", args: []string{"hashpassword"}, wantErr: errHelp},
		{name: "password hashed", args: []string{"hashpassword"}, pwd: "s3cr3t-pass"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_exportReport(t *testing.T) {
	cli, repo := setup(t)
	outDir := t.TempDir()

	t0 := time.Date(2023, time.March, 6, 9, 0, 0, 0, time.UTC)
	seedRecord(t, repo, "sess-1", "1ms21cs001", t0)
	seedRecord(t, repo, "sess-1", "1ms21cs002", t0.Add(time.Minute))
	seedRecord(t, repo, "sess-2", "1ms21cs001", t0.Add(24*time.Hour))

	t.Run("missing -out", func(t *testing.T) {
		if err := cli.run([]string{"admin", "exportreport"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})

	t.Run("no store", func(t *testing.T) {
		bare := &commandLine{}
		err := bare.run([]string{"admin", "exportreport", "-out", filepath.Join(outDir, "none.csv")})
		if err != errNoStore {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errNoStore)
		}
	})

	t.Run("bad timestamp", func(t *testing.T) {
		err := cli.run([]string{"admin", "exportreport", "-from", "yesterday", "-out", filepath.Join(outDir, "bad.csv")})
		if err == nil || !strings.Contains(err.Error(), "must be RFC3339") {
			t.Errorf("cli.run() error = %v, want RFC3339 complaint", err)
		}
	})

	t.Run("full export", func(t *testing.T) {
		out := filepath.Join(outDir, "all.csv")
		if err := cli.run([]string{"admin", "exportreport", "-out", out}); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		if got := len(readCSV(t, out)); got != 4 { // header + 3 records
			t.Errorf("row count = %d, want 4", got)
		}
	})

	t.Run("filtered export", func(t *testing.T) {
		out := filepath.Join(outDir, "filtered.csv")
		args := []string{
			"admin", "exportreport",
			"-session", "sess-1",
			"-from", t0.Format(time.RFC3339),
			"-to", t0.Add(30 * time.Second).Format(time.RFC3339),
			"-out", out,
		}
		if err := cli.run(args); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		rows := readCSV(t, out)
		if len(rows) != 2 { // header + 1 record
			t.Fatalf("row count = %d, want 2", len(rows))
		}
		if rows[1][3] != "1ms21cs001" {
			t.Errorf("student_id = %s, want 1ms21cs001", rows[1][3])
		}
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open() failed: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}
