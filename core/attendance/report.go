package attendance

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

var reportHeader = []string{
	"session_id", "submitted_at", "student_name", "student_id", "device_fingerprint", "latitude", "longitude",
}

// WriteReportCSV writes records as a tabular CSV export.
func WriteReportCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return errors.Wrap(err, "writing report header")
	}
	for _, rec := range recs {
		row := []string{
			rec.SessionID,
			rec.SubmittedAt.Format(time.RFC3339),
			rec.StudentName,
			rec.StudentID,
			rec.DeviceFingerprint,
			strconv.FormatFloat(rec.Latitude, 'f', coordPrecision, 64),
			strconv.FormatFloat(rec.Longitude, 'f', coordPrecision, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing report row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing report")
}

// EmailReport mails records matching `filter` as a CSV attachment.
func (svc *Service) EmailReport(filter QueryFilter, to ...mail.Address) error {
	recs, err := svc.Filter(filter)
	if err != nil {
		return errors.Wrap(err, "filtering records")
	}

	var buff bytes.Buffer
	if err := WriteReportCSV(&buff, recs); err != nil {
		return err
	}

	now := NowFunc().UTC()
	msg := &core.EmailMessage{
		To:      to,
		Subject: "Attendance report - " + now.Format("2006-01-02"),
		BodyStr: fmt.Sprintf("Attendance report generated at %s: %d record(s).", now.Format(time.RFC1123Z), len(recs)),
	}
	if err := msg.Attach(&buff, "attendance-"+now.Format("2006-01-02")+".csv", "text/csv"); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// RunPeriodicReports mails the full record store to `to` at every `interval`
// tick until `stop` is closed. Peripheral feature; run it in its own goroutine.
func (svc *Service) RunPeriodicReports(interval time.Duration, stop <-chan struct{}, to ...mail.Address) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := svc.EmailReport(QueryFilter{}, to...); err != nil && svc.logger != nil {
				svc.logger.Error(fmt.Sprintf("sending periodic report: %v", err), err)
			}
		case <-stop:
			return
		}
	}
}
