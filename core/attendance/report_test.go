package attendance_test

import (
	"bytes"
	"encoding/csv"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mahudhurio/core/attendance"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
)

func TestWriteReportCSV(t *testing.T) {
	t0 := time.Date(2023, time.March, 6, 9, 15, 0, 0, time.UTC)
	recs := []Record{
		{SessionID: "sess-1", StudentName: "Asha K", StudentID: "1ms21cs001", DeviceFingerprint: "device-a", Latitude: 12.971612, Longitude: 77.594608, SubmittedAt: t0},
		{SessionID: "sess-1", StudentName: "Binta, M", StudentID: "1ms21cs002", DeviceFingerprint: "device-b", Latitude: 12.9716, Longitude: 77.5946, SubmittedAt: t0.Add(time.Minute)},
	}

	var buff bytes.Buffer
	err := WriteReportCSV(&buff, recs)
	assert.NoError(t, err)

	rows, err := csv.NewReader(&buff).ReadAll()
	assert.NoError(t, err)
	if assert.Len(t, rows, 3) {
		assert.Equal(t, ReportHeader, rows[0])
		assert.Equal(t, []string{"sess-1", "2023-03-06T09:15:00Z", "Asha K", "1ms21cs001", "device-a", "12.971612", "77.594608"}, rows[1])
		assert.Equal(t, "Binta, M", rows[2][2]) // comma in a field survives
	}
}

func TestWriteReportCSV_empty(t *testing.T) {
	var buff bytes.Buffer
	err := WriteReportCSV(&buff, nil)
	assert.NoError(t, err)

	rows, err := csv.NewReader(&buff).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}

func TestService_EmailReport(t *testing.T) {
	mockNow(t, time.Date(2023, time.March, 6, 9, 0, 0, 0, time.UTC))
	emailsvc.ClearSentMessages()

	conf := testConf()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewAttendanceRepository(db)
	svc := NewService(conf, repo, emailsvc.NewConsoleServiceMock(conf), nil)

	openSession(t, svc, 50, 45)
	if _, err := svc.Submit(submission("Asha", "1ms21cs001", "device-a", anchorLat, anchorLon)); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	err = svc.EmailReport(QueryFilter{}, mail.Address{Name: "Ops", Address: "ops@example.com"})
	assert.NoError(t, err)

	if assert.Len(t, emailsvc.SentMessages, 1) {
		msg := emailsvc.SentMessages[0]
		assert.Contains(t, msg.Subject, "Attendance report")
		if assert.Len(t, msg.Attachments, 1) {
			assert.Equal(t, "text/csv", msg.Attachments[0].ContentType)
			assert.NotZero(t, msg.Attachments[0].Content.Len())
		}
	}
}
