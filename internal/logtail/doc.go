// Package logtail reads the tail of the kitchenhub log file for the UI.
//
// Read extracts the last N lines of a file with a ring buffer, so memory use
// is bounded by N rather than the file size. Parse splits the console
// encoding written by the logger package (tab-separated time, level, logger
// name, message and JSON fields) so the log view can colour and filter by
// level.
//
//	lines, err := logtail.Read(path, 400)
//	if err != nil {
//		return err
//	}
//	for _, e := range logtail.Filter(lines, "warn") {
//		fmt.Println(e.Level, e.Message)
//	}
package logtail
