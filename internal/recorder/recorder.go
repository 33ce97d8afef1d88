package recorder

import "github.com/yanivvi/stocksmania/internal/model"

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(rep *model.Report) error
	Close() error
}
