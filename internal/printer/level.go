// Package printer turns console log calls into message log entries.
package printer

// Level is the console log level of a print call.
type Level int

const (
	LevelAssert Level = iota
	LevelCount
	LevelCountReset
	LevelDebug
	LevelDir
	LevelDirXML
	LevelError
	LevelGroup
	LevelGroupCollapsed
	LevelInfo
	LevelLog
	LevelTable
	LevelTimeEnd
	LevelTimeLog
	LevelTrace
	LevelWarn
)

// Levels lists every defined level.
var Levels = []Level{
	LevelAssert, LevelCount, LevelCountReset, LevelDebug, LevelDir,
	LevelDirXML, LevelError, LevelGroup, LevelGroupCollapsed, LevelInfo,
	LevelLog, LevelTable, LevelTimeEnd, LevelTimeLog, LevelTrace, LevelWarn,
}

var levelNames = map[Level]string{
	LevelAssert:         "assert",
	LevelCount:          "count",
	LevelCountReset:     "countReset",
	LevelDebug:          "debug",
	LevelDir:            "dir",
	LevelDirXML:         "dirxml",
	LevelError:          "error",
	LevelGroup:          "group",
	LevelGroupCollapsed: "groupCollapsed",
	LevelInfo:           "info",
	LevelLog:            "log",
	LevelTable:          "table",
	LevelTimeEnd:        "timeEnd",
	LevelTimeLog:        "timeLog",
	LevelTrace:          "trace",
	LevelWarn:           "warn",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// Structural reports whether the level is rendered by a dedicated branch
// (trace block or group boundary) rather than a value template.
func (l Level) Structural() bool {
	switch l {
	case LevelTrace, LevelGroup, LevelGroupCollapsed:
		return true
	}
	return false
}
