package attendance

// ReportHeader exposes reportHeader to the external test package.
var ReportHeader = reportHeader
