package app

import (
	"fmt"
	"io"
	"os"

	"mech-arena/server/logging"
	loggingSinks "mech-arena/server/logging/sinks"
)

// buildSinks constructs every sink enabled in cfg. The returned closer
// releases files opened for the json sink.
func buildSinks(cfg logging.Config, stdout io.Writer) ([]logging.NamedSink, func() error, error) {
	var sinks []logging.NamedSink
	var file *os.File
	closer := func() error {
		if file == nil {
			return nil
		}
		return file.Close()
	}

	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(stdout, cfg.Console)})
		case "json":
			w := stdout
			if cfg.JSON.FilePath != "" && file == nil {
				f, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return nil, closer, fmt.Errorf("json sink: %w", err)
				}
				file = f
			}
			if file != nil {
				w = file
			}
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(w, cfg.JSON)})
		case "zap":
			sink, err := loggingSinks.NewZapFromConfig(cfg.Zap)
			if err != nil {
				return nil, closer, fmt.Errorf("zap sink: %w", err)
			}
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: sink})
		case "memory":
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewMemorySink()})
		default:
			return nil, closer, fmt.Errorf("unknown sink %q", name)
		}
	}
	return sinks, closer, nil
}
