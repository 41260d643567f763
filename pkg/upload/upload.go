// Package upload distributes the generated calendar to its configured
// destinations. Failures here never unwind the work already done on the
// planning documents.
package upload

import (
	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/model"
)

// Destination is one external distribution endpoint for a generated
// calendar.
type Destination interface {
	Name() string
	Upload(path string, slots []model.ScheduledSlot) error
}

// Dispatch sends the calendar to every destination, logging failures and
// continuing.
func Dispatch(destinations []Destination, path string, slots []model.ScheduledSlot, log *zap.Logger) {
	for _, d := range destinations {
		if err := d.Upload(path, slots); err != nil {
			log.Warn("calendar upload failed",
				zap.String("destination", d.Name()), zap.Error(err))
			continue
		}
		log.Info("calendar uploaded", zap.String("destination", d.Name()))
	}
}
