package logger

import (
	"fmt"
	"log/slog"

	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
)

// errorAttrReplacer renders error attributes through their Error method so
// wrapped errors keep a stable single-line representation in log output.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && attr.Key == slogx.ErrorKey {
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.Attr{Key: attr.Key, Value: slog.StringValue(fmt.Sprintf("%v", err))}
		}
	}
	return attr
}
