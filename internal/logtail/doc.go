// Package logtail reads and parses the tail of finder's log file.
//
// # Reading Log Files
//
// Read extracts the last maxLines of a file with a ring buffer: one
// sequential pass, O(maxLines) memory, lines returned in chronological order.
// A missing file is not an error; it yields no lines, which is the normal
// state before finder has logged anything.
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//	if err != nil {
//		return fmt.Errorf("tail log: %w", err)
//	}
//
// Lines longer than 1MB fail the scan with bufio.ErrTooLong.
//
// # Parsing
//
// finder logs through slog's text handler, so each line is a sequence of
// key=value pairs with Go-quoted values where needed:
//
//	time=2025-10-13T12:00:00.000Z level=WARN msg="api response" component=api status=404
//
// ParseLine pulls out time, level and msg and keeps the remaining pairs in
// order as Attrs, which the Activity view renders with per-level colors.
// Anything else (panics, stray output) is returned unparsed with ok=false.
package logtail
