package core

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// exportTimeLayout matches the timestamp format used across the UI
// and import/export round trips.
const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	"Domain",
	"Nickname",
	"Status",
	"DaysRemaining",
	"NotAfter",
	"NotBefore",
	"Issuer",
	"SerialNumber",
	"IsManual",
	"NotifyEnabled",
	"NotifyThreshold",
	"AddedTime",
	"LastCheckTime",
}

// ExportCSV renders records as UTF-8 CSV with a byte-order marker for
// spreadsheet compatibility. String fields are double-quote wrapped,
// numeric and yes/no fields are bare. Missing certificate fields
// render as empty strings. The column set is the single canonical
// schema; both full and selection exports use it.
func ExportCSV(records []WatchedDomain) []byte {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	buf.WriteString(strings.Join(exportHeader, ","))
	buf.WriteByte('\n')

	for _, r := range records {
		buf.WriteString(strings.Join(exportRow(r), ","))
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func exportRow(r WatchedDomain) []string {
	var status, days, notAfter, notBefore, issuer, serial string
	if c := r.CertInfo; c != nil {
		status = StatusLabel(c.Status)
		days = strconv.Itoa(c.DaysRemaining)
		notAfter = formatExportTime(c.NotAfter)
		notBefore = formatExportTime(c.NotBefore)
		issuer = c.Issuer
		serial = c.SerialNumber
	}

	return []string{
		quote(r.Domain),
		quote(r.Nickname),
		quote(status),
		days,
		quote(notAfter),
		quote(notBefore),
		quote(issuer),
		quote(serial),
		yesNo(r.IsManual),
		yesNo(r.NotifyEnabled),
		strconv.Itoa(r.NotifyThreshold),
		quote(r.AddedTime.Format(exportTimeLayout)),
		quote(formatExportTime(r.LastCheckTime)),
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportTimeLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
